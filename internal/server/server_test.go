package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryZhang-ZHY/beetle/internal/catalog"
	"github.com/HenryZhang-ZHY/beetle/internal/config"
	"github.com/HenryZhang-ZHY/beetle/internal/storage"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	store := storage.NewFsStorage(filepath.Join(t.TempDir(), "index"))
	cat := catalog.New(store, config.Default())
	target := t.TempDir()
	return New(cat, "127.0.0.1:0"), target
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateListGetRemove(t *testing.T) {
	s, target := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/indexes", map[string]string{"name": "idx", "path": target})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/indexes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "idx", list[0]["index_name"])

	rec = doJSON(t, s, http.MethodGet, "/api/indexes/idx", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/indexes/idx", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/indexes/idx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate_Conflicts(t *testing.T) {
	s, target := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/indexes", map[string]string{"name": "idx", "path": target})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/indexes", map[string]string{"name": "idx", "path": target})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreate_MissingTargetIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/indexes",
		map[string]string{"name": "idx", "path": filepath.Join(t.TempDir(), "gone")})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_MalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/indexes", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndSearch(t *testing.T) {
	s, target := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(target, "main.c"), []byte("int main() { return 0; }"), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/indexes", map[string]string{"name": "idx", "path": target})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/indexes/idx/update", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var update map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &update))
	assert.Equal(t, 1, update["added"])

	rec = doJSON(t, s, http.MethodGet, "/api/indexes/idx/search?q=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Query   string `json:"query"`
		Total   int    `json:"total_results"`
		Results []struct {
			Path    string `json:"path"`
			Snippet string `json:"snippet"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	assert.Equal(t, "main", search.Query)
	require.Equal(t, 1, search.Total)
	assert.True(t, strings.HasSuffix(search.Results[0].Path, "main.c"))
}

func TestSearch_UnknownIndexIs404(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/indexes/ghost/search?q=x", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "NotFound")
}

func TestReset_EmptiesIndex(t *testing.T) {
	s, target := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(target, "main.c"), []byte("int main() { return 0; }"), 0o644))

	doJSON(t, s, http.MethodPost, "/api/indexes", map[string]string{"name": "idx", "path": target})
	doJSON(t, s, http.MethodPost, "/api/indexes/idx/update", nil)

	rec := doJSON(t, s, http.MethodPost, "/api/indexes/idx/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/indexes/idx/search?q=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Total int `json:"total_results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	assert.Equal(t, 0, search.Total)
}
