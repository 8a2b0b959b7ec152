package api

import (
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
)

var pathParam = regexp.MustCompile(`:([a-zA-Z_]+)`)

// Every mounted route must be described in the embedded OpenAPI document.
func TestOpenAPIDocumentsEveryRoute(t *testing.T) {
	var doc struct {
		OpenAPI string                            `yaml:"openapi"`
		Paths   map[string]map[string]interface{} `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(openapiSpec, &doc))
	assert.True(t, strings.HasPrefix(doc.OpenAPI, "3."))

	e := echo.New()
	NewServer(&mockAutomator{}, &fakeIdentity{}, logging.NewNop()).RegisterRoutes(e)

	for _, r := range e.Routes() {
		if r.Path == "/openapi.yaml" || r.Path == "/docs" {
			continue
		}
		path := pathParam.ReplaceAllString(r.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "path %s not documented", path) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(r.Method), "%s %s not documented", r.Method, path)
	}
}
