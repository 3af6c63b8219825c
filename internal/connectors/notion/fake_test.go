package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

const (
	rootID  = "11111111-1111-4111-8111-111111111111"
	childID = "22222222-2222-4222-8222-222222222222"
	dbID    = "33333333-3333-4333-8333-333333333333"
	rowID   = "44444444-4444-4444-8444-444444444444"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token string
	err   error
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, p.err
}

func (p *mockTokenProvider) CredentialsID() string {
	return "test-credentials"
}

func (p *mockTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodToken
}

func (p *mockTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}

// fakeNotion serves a small workspace over the Notion REST paths.
type fakeNotion struct {
	mu       sync.Mutex
	pages    map[string]string
	children map[string][]string
	rows     map[string][]string
	search   []string
	requests []string

	// status, when set, is returned for every request.
	status int
}

func newFakeNotion() *fakeNotion {
	return &fakeNotion{
		pages:    make(map[string]string),
		children: make(map[string][]string),
		rows:     make(map[string][]string),
	}
}

// workspace builds root -> child page, root -> database -> row.
func (f *fakeNotion) workspace(edited map[string]time.Time) *fakeNotion {
	at := func(id string) time.Time {
		if t, ok := edited[id]; ok {
			return t
		}
		return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}

	f.pages[rootID] = pageJSON(rootID, "Team Handbook", `{"type":"workspace","workspace":true}`, at(rootID))
	f.pages[childID] = pageJSON(childID, "Onboarding", pageParent(rootID), at(childID))
	f.pages[rowID] = pageJSON(rowID, "Hire designer", `{"type":"database_id","database_id":"`+dbID+`"}`, at(rowID))

	f.children[rootID] = []string{
		textBlock("b1", "heading_1", "Welcome"),
		textBlock("b2", "paragraph", "Read this first."),
		`{"object":"block","id":"` + childID + `","type":"child_page","has_children":true,"child_page":{"title":"Onboarding"}}`,
		`{"object":"block","id":"` + dbID + `","type":"child_database","has_children":false,"child_database":{"title":"Hiring"}}`,
	}
	f.children[childID] = []string{textBlock("b3", "paragraph", "Set up your laptop.")}
	f.rows[dbID] = []string{rowID}
	f.search = []string{rootID, childID}
	return f
}

func (f *fakeNotion) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"object":"user","id":"bot-1","type":"bot","name":"NLP Bot","bot":{}}`)
	})
	mux.HandleFunc("POST /v1/search", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, f.list(f.search, f.pages))
	})
	mux.HandleFunc("GET /v1/pages/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		page, ok := f.pages[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, page)
	})
	mux.HandleFunc("POST /v1/databases/{id}/query", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ids, ok := f.rows[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, f.list(ids, f.pages))
	})
	mux.HandleFunc("GET /v1/blocks/{id}/children", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		blocks := f.children[r.PathValue("id")]
		f.mu.Unlock()
		writeJSON(w, `{"object":"list","results":[`+strings.Join(blocks, ",")+`],"has_more":false,"next_cursor":null}`)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		status := f.status
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"object":"error","status":%d,"code":"unauthorized","message":"API token is invalid."}`, status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeNotion) list(ids []string, objects map[string]string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]string, 0, len(ids))
	for _, id := range ids {
		if obj, ok := objects[id]; ok {
			results = append(results, obj)
		}
	}
	return `{"object":"list","results":[` + strings.Join(results, ",") + `],"has_more":false,"next_cursor":null}`
}

func (f *fakeNotion) requested(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newTestConnector(t *testing.T, f *fakeNotion, cfg *Config) *Connector {
	t.Helper()
	srv := f.server(t)
	return New("src-1", cfg, &mockTokenProvider{token: "secret"}, WithBaseURL(srv.URL), WithRateLimit(1000))
}

func pageParent(id string) string {
	return `{"type":"page_id","page_id":"` + id + `"}`
}

func pageJSON(id, title, parent string, edited time.Time) string {
	return `{"object":"page","id":"` + id + `",` +
		`"created_time":"2024-01-01T09:00:00.000Z",` +
		`"last_edited_time":"` + edited.Format(time.RFC3339) + `",` +
		`"parent":` + parent + `,"archived":false,` +
		`"url":"https://www.notion.so/` + strings.ReplaceAll(id, "-", "") + `",` +
		`"properties":{"Name":{"id":"title","type":"title","title":[` + richText(title) + `]}}}`
}

func textBlock(id, typ, text string) string {
	return `{"object":"block","id":"` + id + `","type":"` + typ + `","has_children":false,` +
		`"` + typ + `":{"rich_text":[` + richText(text) + `]}}`
}

func richText(s string) string {
	return `{"type":"text","text":{"content":"` + s + `"},"plain_text":"` + s + `"}`
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find object."}`))
}
