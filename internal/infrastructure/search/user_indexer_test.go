package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
)

type call struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records every request.
type fakeES struct {
	mu     sync.Mutex
	calls  []call
	status int
	body   string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Body: string(b)})
	status, body := f.status, f.body
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = `{}`
	}
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newIndexer(t *testing.T, f *fakeES) *UserIndexer {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewUserIndexer(es, "users")
}

func TestIndexKeysByEmail(t *testing.T) {
	f := &fakeES{status: http.StatusCreated}
	x := newIndexer(t, f)

	u := &entity.User{ID: 3, Name: "Ana", Email: "a@x.com", PasswordHash: "$2a$10$secret"}
	if err := x.Index(context.Background(), u); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("expected 1 request, got %d", len(f.calls))
	}
	c := f.calls[0]
	if c.Method != http.MethodPut || c.Path != "/users/_doc/a@x.com" {
		t.Fatalf("request = %s %s", c.Method, c.Path)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(c.Body), &doc); err != nil {
		t.Fatalf("body: %v", err)
	}
	if doc["nome"] != "Ana" || doc["email"] != "a@x.com" || doc["id"] != float64(3) {
		t.Fatalf("unexpected document %v", doc)
	}
	if len(doc) != 3 {
		t.Fatalf("document must only hold id, nome and email: %v", doc)
	}
}

func TestIndexReportsErrorStatus(t *testing.T) {
	x := newIndexer(t, &fakeES{status: http.StatusBadRequest, body: `{"error":"bad"}`})
	if err := x.Index(context.Background(), &entity.User{Email: "a@x.com"}); err == nil {
		t.Fatal("expected error on 400")
	}
}

func TestRemoveMissingIsNotAnError(t *testing.T) {
	f := &fakeES{status: http.StatusNotFound, body: `{"result":"not_found"}`}
	x := newIndexer(t, f)
	if err := x.Remove(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if f.calls[0].Method != http.MethodDelete || f.calls[0].Path != "/users/_doc/a@x.com" {
		t.Fatalf("request = %s %s", f.calls[0].Method, f.calls[0].Path)
	}
}

func TestSearch(t *testing.T) {
	f := &fakeES{body: `{"hits":{"hits":[
		{"_id":"a@x.com","_source":{"id":1,"nome":"Ana","email":"a@x.com"}},
		{"_id":"b@x.com","_source":{"id":2,"nome":"Bia","email":"b@x.com"}}
	]}}`}
	x := newIndexer(t, f)

	got, err := x.Search(context.Background(), "x.com", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].Name != "Bia" {
		t.Fatalf("unexpected hits %+v", got)
	}
	if f.calls[0].Path != "/users/_search" {
		t.Fatalf("path = %s", f.calls[0].Path)
	}
}

func TestSearchSize(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"default when zero", 0, 10},
		{"default when negative", -3, 10},
		{"kept in range", 25, 25},
		{"upper bound", 50, 50},
		{"capped above bound", 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeES{body: `{"hits":{"hits":[]}}`}
			x := newIndexer(t, f)
			if _, err := x.Search(context.Background(), "ana", tt.in); err != nil {
				t.Fatalf("Search: %v", err)
			}
			var q struct {
				Size int `json:"size"`
			}
			if err := json.Unmarshal([]byte(f.calls[0].Body), &q); err != nil {
				t.Fatalf("decode query: %v", err)
			}
			if q.Size != tt.want {
				t.Fatalf("size = %d, want %d", q.Size, tt.want)
			}
		})
	}
}
