// Package docs provides generated OpenAPI documentation.
//
// Concierge API
//
//	@title			Concierge API
//	@version		1.0
//	@description	Extracts airport concierge service offers from PDF documents into a fixed JSON template.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/concierge
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate go tool swag init -g ../cmd/concierge/serve.go -o ./swagger --parseDependency --parseInternal
