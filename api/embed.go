// Package api holds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is the document the request validator enforces
//
//go:embed openapi.yaml
var OpenAPI []byte
