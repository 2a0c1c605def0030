package api

import (
	"testing"
)

// Test that the embedded OpenAPI document loads and has every route the server registers
func TestGetSwagger(t *testing.T) {
	swagger, err := GetSwagger()
	if err != nil {
		t.FailNow()
	}
	for _, path := range []string{"/data/{file}", "/artworks", "/images/{id}", "/images/{id}/url",
		"/manifest/{id}", "/cmd/stop", "/cmd/cache", "/cmd/preload"} {
		if swagger.Paths.Find(path) == nil {
			t.Errorf("missing path %s", path)
		}
	}
	if swagger.Paths.Find("/cmd/cache").Delete == nil {
		t.Fail()
	}
}
