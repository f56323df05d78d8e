package router

import (
	"net/http"
	"os"

	apidoc "code-review-assistant/backend/api"
	"code-review-assistant/backend/pkg/validator"

	"github.com/gin-gonic/gin"
)

// openAPIValidator loads OPENAPI_SCHEMA_PATH when set and the embedded
// document otherwise. A broken schema disables validation.
func (r *Router) openAPIValidator() *validator.OpenAPIValidator {
	schemaPath := r.Container.Config.OpenAPI.SchemaPath

	var (
		v   *validator.OpenAPIValidator
		err error
	)
	if schemaPath != "" && fileExists(schemaPath) {
		v, err = validator.NewOpenAPIValidator(schemaPath)
	} else {
		if schemaPath != "" {
			r.Logger.Warn("OpenAPI schema file not found, using embedded schema", "path", schemaPath)
		}
		v, err = validator.NewOpenAPIValidatorFromData(apidoc.OpenAPI)
	}
	if err != nil {
		r.Logger.Error("Failed to initialize OpenAPI validator", "error", err.Error())
		return nil
	}

	r.Logger.Info("OpenAPI validation enabled")
	return v
}

// setupDocsRoutes serves the embedded OpenAPI document
func (r *Router) setupDocsRoutes() {
	r.Engine.GET("/api/docs/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", apidoc.OpenAPI)
	})
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
