package todoist_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tododash/core/internal/adapters/todoist"
	"github.com/tododash/core/internal/infrastructure/config"
	"github.com/tododash/core/internal/infrastructure/logger"
)

const syncResponse = `{
	"items": [
		{"id": 1, "content": "task A", "project_id": 1, "priority": 4, "due": {"date": "2026-09-01"}},
		{"id": 2, "content": "task B", "project_id": 2, "labels": [10]}
	],
	"projects": [{"id": 1, "name": "Work", "color": "red"}],
	"labels": [{"id": 10, "name": "urgent"}],
	"collaborators": [{"id": 7, "full_name": "Ada", "image_id": "img123"}]
}`

func newTestClient(baseURL string) *todoist.Client {
	return todoist.NewClient(config.TodoistConfig{
		APIBase:       baseURL,
		APIVersion:    "v8",
		AccessToken:   "test-token",
		ResourceTypes: `["items","projects","labels","collaborators"]`,
		Timeout:       5 * time.Second,
	}, logger.NewNop())
}

func TestFetchRequestShape(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(r.ParseForm())
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(syncResponse))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	assert.Nil(err)

	assert.Equal(http.MethodPost, gotReq.Method)
	assert.Equal("/v8/sync", gotReq.URL.Path)
	assert.Equal("Bearer test-token", gotReq.Header.Get("Authorization"))
	assert.Equal("no-cache", gotReq.Header.Get("Cache-Control"))
	assert.Equal("*", gotReq.PostFormValue("sync_token"))
	assert.Equal(`["items","projects","labels","collaborators"]`, gotReq.PostFormValue("resource_types"))
}

func TestFetchDecodesPayload(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(syncResponse))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).Fetch(context.Background())
	assert.Nil(err)

	assert.Len(payload.Items, 2)
	assert.Equal("task A", payload.Items[0].Content)
	assert.Equal("2026-09-01", payload.Items[0].Due.Date)
	assert.Nil(payload.Items[1].Due)

	assert.Len(payload.Projects, 1)
	assert.Equal("Work", payload.Projects[0].Name)
	assert.Len(payload.Labels, 1)
	assert.Len(payload.Collaborators, 1)
	if assert.NotNil(payload.Collaborators[0].ImageID) {
		assert.Equal("img123", *payload.Collaborators[0].ImageID)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	assert.ErrorContains(err, "status 403")
}

func TestFetchMalformedBody(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background())
	assert.ErrorContains(err, "decode")
}
