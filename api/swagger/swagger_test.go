package swagger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecHandler(t *testing.T) {
	w := httptest.NewRecorder()
	SpecHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, SpecPath, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths["/v1/users"], "post")
	assert.Contains(t, doc.Paths["/v1/users/{id}"], "patch")
	assert.Contains(t, doc.Paths, "/v1/users/firebase/{firebase_uid}")
}
