package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"jobboard-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchDirectory reads job summaries from an Elasticsearch index whose
// document ids are the job ids.
type SearchDirectory struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchDirectory(client *elasticsearch.Client, index string) *SearchDirectory {
	return &SearchDirectory{client: client, index: index}
}

type searchDoc struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

func (d *searchDoc) job() (*models.Job, error) {
	var job models.Job
	if err := json.Unmarshal(d.Source, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", d.ID, err)
	}
	job.ID = d.ID
	return &job, nil
}

func (d *SearchDirectory) Get(ctx context.Context, id string) (*models.Job, error) {
	if !isValidID(id) {
		return nil, ErrJobNotFound
	}

	res, err := d.client.Get(d.index, id, d.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrJobNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get job %s: %s", id, res.Status())
	}

	var doc searchDoc
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !doc.Found {
		return nil, ErrJobNotFound
	}
	return doc.job()
}

func (d *SearchDirectory) GetMany(ctx context.Context, ids []string) (map[string]*models.Job, error) {
	out := make(map[string]*models.Job)
	valid := validIDs(ids)
	if len(valid) == 0 {
		return out, nil
	}

	body, err := json.Marshal(map[string]interface{}{"ids": valid})
	if err != nil {
		return nil, err
	}

	res, err := d.client.Mget(
		bytes.NewReader(body),
		d.client.Mget.WithContext(ctx),
		d.client.Mget.WithIndex(d.index),
	)
	if err != nil {
		return nil, fmt.Errorf("mget jobs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("mget jobs: %s", res.Status())
	}

	var payload struct {
		Docs []searchDoc `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	for i := range payload.Docs {
		if !payload.Docs[i].Found {
			continue
		}
		job, err := payload.Docs[i].job()
		if err != nil {
			return nil, err
		}
		out[job.ID] = job
	}
	return out, nil
}
