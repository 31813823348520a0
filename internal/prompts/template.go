package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
)

// variablePattern matches Go template variable references like {{.Schema}} or {{ .Hint }}.
var variablePattern = regexp.MustCompile(`\{\{[^}]*?\.([A-Z][a-zA-Z0-9_]*)[^}]*\}\}`)

// ExtractVariables returns the sorted, de-duplicated field names a template references.
// "{{.Schema}} and {{join .IntegerFields}}" returns ["IntegerFields", "Schema"].
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, match := range matches {
		if len(match) > 1 && !seen[match[1]] {
			seen[match[1]] = true
			vars = append(vars, match[1])
		}
	}
	sort.Strings(vars)
	return vars
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
