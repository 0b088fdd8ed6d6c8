package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSearch(t *testing.T, handler http.HandlerFunc) *SearchDirectory {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return NewSearchDirectory(client, "jobs")
}

func TestSearchDirectory_Get(t *testing.T) {
	jobID := uuid.NewString()
	dir := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/_doc/"+jobID, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_index": "jobs",
			"_id":    jobID,
			"found":  true,
			"_source": map[string]interface{}{
				"position": "Nurse",
				"company":  "General Hospital",
				"location": "Boston",
			},
		})
	})

	job, err := dir.Get(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, "Nurse", job.Position)
	assert.Equal(t, "General Hospital", job.Company)
}

func TestSearchDirectory_Get_NotFound(t *testing.T) {
	jobID := uuid.NewString()
	dir := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_index": "jobs",
			"_id":    jobID,
			"found":  false,
		})
	})

	_, err := dir.Get(context.Background(), jobID)
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestSearchDirectory_Get_ServerError(t *testing.T) {
	dir := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})

	_, err := dir.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrJobNotFound))
}

func TestSearchDirectory_GetMany(t *testing.T) {
	found, missing := uuid.NewString(), uuid.NewString()
	dir := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/_mget", r.URL.Path)

		var body struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{found, missing}, body.IDs)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"docs": []map[string]interface{}{
				{"_id": found, "found": true, "_source": map[string]interface{}{"position": "Nurse", "company": "General Hospital"}},
				{"_id": missing, "found": false},
			},
		})
	})

	got, err := dir.GetMany(context.Background(), []string{found, missing, "bogus"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Nurse", got[found].Position)
}
