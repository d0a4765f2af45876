// Package swagger embeds the OpenAPI description of the user profile REST surface.
package swagger

import (
	_ "embed"
	"net/http"
)

// SpecPath is where the document is served.
const SpecPath = "/swagger/user.swagger.json"

//go:embed user.swagger.json
var spec []byte

// SpecHandler serves the embedded document.
func SpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(spec)
	}
}
