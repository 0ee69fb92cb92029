package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	handler "github.com/samirrijal/seismeta/internal/adapters/http"
)

// findOpenAPISpec locates api/openapi.yaml by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadOpenAPISpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the OpenAPI document and checks it covers every route.
func TestOpenAPISpec(t *testing.T) {
	spec := loadOpenAPISpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/service-status",
		"/v1/service-status",
		"/v1/health",
		"/v1/ready",
		"/v1/openzgy/headers",
		"/v1/openzgy/bingrid",
		"/v1/surveys",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	if item := spec.Paths.Find("/v1/openzgy/bingrid"); item != nil && item.Post == nil {
		t.Error("expected POST on /v1/openzgy/bingrid")
	}
	if item := spec.Paths.Find("/service-status"); item != nil && (item.Get == nil || !item.Get.Deprecated) {
		t.Error("expected /service-status to be marked deprecated")
	}

	expectedSchemas := []string{
		"Survey",
		"VolumeGeometry",
		"VolumeHeaders",
		"BinGrid",
		"LocalCoordinate",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIBinGridKeys checks the documented bin grid lists all eleven attributes.
func TestOpenAPIBinGridKeys(t *testing.T) {
	spec := loadOpenAPISpec(t)

	ref := spec.Components.Schemas["BinGrid"]
	if ref == nil || ref.Value == nil {
		t.Fatal("BinGrid schema missing")
	}
	if n := len(ref.Value.Properties); n != 11 {
		t.Errorf("expected 11 bin grid properties, got %d", n)
	}
}

// TestOpenAPIInfo verifies document metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadOpenAPISpec(t)

	if spec.Info.Title != "Seismeta API" {
		t.Errorf("expected title 'Seismeta API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(spec.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}

func TestDocs_OpenAPIJSON(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = findOpenAPISpec(t)
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := setupApp(makeDeps(&mockSurveyRepo{}))
	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.OpenAPI == "" || doc.Info.Title != "Seismeta API" {
		t.Errorf("unexpected document header: %+v", doc)
	}
}

func TestDocs_MissingDocument(t *testing.T) {
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = "does/not/exist.yaml"
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := setupApp(makeDeps(&mockSurveyRepo{}))
	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
