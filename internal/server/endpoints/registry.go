package endpoints

import (
	"github.com/jackzampolin/concierge/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Extraction endpoints
		&SchemaEndpoint{},
		&GetPromptEndpoint{},
		&ExtractEndpoint{},
		&ExportEndpoint{},

		// Browser UI
		&IndexEndpoint{},
		&UIExtractEndpoint{},
		&StaticEndpoint{},

		// API documentation
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}
