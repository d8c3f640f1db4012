package web

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/codevault-app/codevault/internal/artifact"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/generate"
	"github.com/codevault-app/codevault/internal/provider"
	"github.com/codevault-app/codevault/internal/realtime"
	"github.com/codevault-app/codevault/internal/storage"
	"github.com/codevault-app/codevault/internal/storage/memory"
)

type fakeProvider struct {
	name string
	text string
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Complete(ctx context.Context, req *domain.CompletionRequest) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

type fakeBroadcaster struct {
	events []realtime.Event
}

func (b *fakeBroadcaster) Broadcast(event realtime.Event) {
	b.events = append(b.events, event)
}

type fixture struct {
	router *chi.Mux
	store  storage.Store
	hub    *fakeBroadcaster
}

func newFixture(t *testing.T, prov domain.Provider) *fixture {
	t.Helper()

	registry := provider.NewRegistry()
	if prov != nil {
		registry.Register(domain.ProviderID(prov.Name()), prov)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	hub := &fakeBroadcaster{}
	gen := generate.New(registry, generate.WithLogger(logger))

	handler := NewHandler(store, gen, hub, logger)
	router := chi.NewRouter()
	handler.Routes(router)
	router.Get("/healthz", HandleHealth)

	return &fixture{router: router, store: store, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

const sampleCompletion = "Here is your site.\n\n```html\n<h1>Hi</h1>\n```\n\n```css\nh1 { color: red; }\n```\n\nEnjoy!"

func TestGenerate(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "gpt-4", text: sampleCompletion})

	rec := f.do(t, "POST", "/api/ai/generate", map[string]any{
		"prompt": "make a page",
		"model":  "gpt-4",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success     bool            `json:"success"`
		Code        artifact.Bundle `json:"code"`
		RawResponse string          `json:"rawResponse"`
		Timestamp   string          `json:"timestamp"`
	}
	decode(t, rec, &resp)

	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Code.Markup != "<h1>Hi</h1>" {
		t.Errorf("html = %q", resp.Code.Markup)
	}
	if resp.Code.Styles != "h1 { color: red; }" {
		t.Errorf("css = %q", resp.Code.Styles)
	}
	if resp.RawResponse != sampleCompletion {
		t.Error("rawResponse does not match completion text")
	}
	if resp.Timestamp == "" {
		t.Error("missing timestamp")
	}
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "gpt-4", text: sampleCompletion})

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty prompt",
			body:       map[string]any{"prompt": "   ", "model": "gpt-4"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "empty_prompt",
		},
		{
			name:       "unknown model",
			body:       map[string]any{"prompt": "hi", "model": "gpt-5"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_provider",
		},
		{
			name:       "unconfigured model",
			body:       map[string]any{"prompt": "hi", "model": "claude-3"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/api/ai/generate", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp errorEnvelope
			decode(t, rec, &resp)
			if resp.Success {
				t.Error("success = true on error response")
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	f := newFixture(t, &fakeProvider{
		name: "gpt-4",
		err:  domain.ErrUpstream("gpt-4", "model overloaded"),
	})

	rec := f.do(t, "POST", "/api/ai/generate", map[string]any{
		"prompt": "make a page",
		"model":  "gpt-4",
	})

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var resp errorEnvelope
	decode(t, rec, &resp)
	if !strings.Contains(resp.Error, "model overloaded") {
		t.Errorf("error = %q, want upstream detail preserved", resp.Error)
	}
}

func TestGenerateWithProject(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "gpt-4", text: sampleCompletion})
	ctx := context.Background()

	project := &storage.Project{Name: "site"}
	if err := f.store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rec := f.do(t, "POST", "/api/ai/generate", map[string]any{
		"prompt":    "make a page",
		"model":     "gpt-4",
		"projectId": project.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	stored, err := f.store.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	names := make([]string, 0, len(stored.Files))
	for _, file := range stored.Files {
		names = append(names, file.Name)
	}
	if len(names) != 3 { // index.html, styles.css, README.md
		t.Errorf("files = %v, want 3 entries", names)
	}

	msgs, err := f.store.ListMessages(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "make a page" {
		t.Errorf("unexpected user turn: %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != sampleCompletion || msgs[1].Provider != "gpt-4" {
		t.Errorf("unexpected assistant turn: %+v", msgs[1])
	}

	if len(f.hub.events) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(f.hub.events))
	}
	if f.hub.events[0].Type != "code-update" || f.hub.events[0].ProjectID != project.ID {
		t.Errorf("unexpected event: %+v", f.hub.events[0])
	}
}

func TestGenerateUnknownProject(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "gpt-4", text: sampleCompletion})

	rec := f.do(t, "POST", "/api/ai/generate", map[string]any{
		"prompt":    "make a page",
		"model":     "gpt-4",
		"projectId": "missing",
	})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestModify(t *testing.T) {
	completion := "```html\n<h1>Bye</h1>\n```"
	f := newFixture(t, &fakeProvider{name: "deepseek", text: completion})

	rec := f.do(t, "POST", "/api/ai/modify", map[string]any{
		"code":          artifact.Bundle{Markup: "<h1>Hi</h1>"},
		"modifications": "change the greeting",
		"model":         "deepseek",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success      bool            `json:"success"`
		ModifiedCode artifact.Bundle `json:"modifiedCode"`
	}
	decode(t, rec, &resp)

	if !resp.Success {
		t.Error("success = false")
	}
	if resp.ModifiedCode.Markup != "<h1>Bye</h1>" {
		t.Errorf("modified html = %q", resp.ModifiedCode.Markup)
	}
}

func TestProjectCRUD(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, "POST", "/api/projects", map[string]any{
		"name":        "portfolio",
		"description": "personal site",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var created projectResponse
	decode(t, rec, &created)
	if created.Project.ID == "" {
		t.Fatal("missing project ID")
	}
	if len(created.Project.Files) != 1 || created.Project.Files[0].Name != "index.html" {
		t.Errorf("expected starter index.html, got %+v", created.Project.Files)
	}
	if !strings.Contains(created.Project.Files[0].Content, "Welcome to CodeVault") {
		t.Error("starter file missing welcome markup")
	}

	rec = f.do(t, "GET", "/api/projects", nil)
	var list projectListResponse
	decode(t, rec, &list)
	if len(list.Projects) != 1 {
		t.Errorf("len(projects) = %d, want 1", len(list.Projects))
	}

	rec = f.do(t, "PUT", "/api/projects/"+created.Project.ID, map[string]any{
		"name": "renamed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	var updated projectResponse
	decode(t, rec, &updated)
	if updated.Project.Name != "renamed" {
		t.Errorf("name = %q, want renamed", updated.Project.Name)
	}
	if updated.Project.Description != "personal site" {
		t.Error("partial update clobbered description")
	}

	rec = f.do(t, "DELETE", "/api/projects/"+created.Project.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = f.do(t, "GET", "/api/projects/"+created.Project.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}

	// update + delete each broadcast
	if len(f.hub.events) != 2 {
		t.Fatalf("broadcasts = %d, want 2", len(f.hub.events))
	}
	if f.hub.events[1].Type != "project-deleted" {
		t.Errorf("last event type = %q, want project-deleted", f.hub.events[1].Type)
	}
}

func TestProjectValidation(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, "POST", "/api/projects", map[string]any{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}

	rec = f.do(t, "GET", "/api/projects/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing project status = %d, want 404", rec.Code)
	}

	rec = f.do(t, "PUT", "/api/projects/missing", map[string]any{"name": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", rec.Code)
	}

	rec = f.do(t, "DELETE", "/api/projects/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
}

func TestProjectHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	project := &storage.Project{Name: "chat"}
	if err := f.store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := f.store.AppendMessage(ctx, &storage.ChatMessage{
		ProjectID: project.ID, Role: "user", Content: "hello",
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	rec := f.do(t, "GET", "/api/projects/"+project.ID+"/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Success  bool                   `json:"success"`
		Messages []*storage.ChatMessage `json:"messages"`
	}
	decode(t, rec, &resp)
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "hello" {
		t.Errorf("unexpected history: %+v", resp.Messages)
	}

	rec = f.do(t, "GET", "/api/projects/missing/history", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing project history status = %d, want 404", rec.Code)
	}
}

func TestExportProject(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	project := &storage.Project{
		Name: "site",
		Files: []artifact.File{
			{Name: "index.html", Content: "<h1>Hi</h1>", Language: "html"},
			{Name: "styles.css", Content: "h1 { color: red; }", Language: "css"},
		},
	}
	if err := f.store.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rec := f.do(t, "GET", "/api/projects/"+project.ID+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "site.zip") {
		t.Errorf("content-disposition = %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("zip entries = %d, want 2", len(zr.File))
	}

	entry, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer entry.Close()
	content, err := io.ReadAll(entry)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(content) != "<h1>Hi</h1>" {
		t.Errorf("entry content = %q", content)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	decode(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}
