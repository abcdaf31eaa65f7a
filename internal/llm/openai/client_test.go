package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillgap-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.apiURL = srv.URL
	return c, srv
}

func chatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestExtractSkillsReturnsRawJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if req.Temperature == nil || *req.Temperature != 0 {
			t.Errorf("expected temperature 0")
		}
		w.Write([]byte(chatBody(`{"skills":[],"summary":"ok","fitAssessment":"fine"}`)))
	})

	raw, err := c.ExtractSkills(context.Background(), llm.ExtractInput{CVText: "some cv"})
	if err != nil {
		t.Fatalf("ExtractSkills: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("expected valid JSON, got %s", raw)
	}
}

func TestExtractSkillsSurfacesStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.ExtractSkills(context.Background(), llm.ExtractInput{CVText: "cv"})
	var se *llm.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", se.StatusCode)
	}
	if !se.Retryable() {
		t.Fatal("429 should be retryable")
	}
}

func TestExtractSkillsUnauthorizedNotRetryable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := c.ExtractSkills(context.Background(), llm.ExtractInput{CVText: "cv"})
	var se *llm.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Retryable() {
		t.Fatal("401 must not be retryable")
	}
}

func TestExtractSkillsRepairsInvalidJSON(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(chatBody("Here is the JSON: {\"skills\":[]}")))
			return
		}
		w.Write([]byte(chatBody(`{"skills":[],"summary":"","fitAssessment":""}`)))
	})

	raw, err := c.ExtractSkills(context.Background(), llm.ExtractInput{CVText: "cv"})
	if err != nil {
		t.Fatalf("ExtractSkills: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a repair round trip, got %d calls", calls)
	}
	if !json.Valid(raw) {
		t.Fatalf("expected valid JSON after repair, got %s", raw)
	}
}

func TestBuildPromptIncludesPositionContext(t *testing.T) {
	msgs := BuildPrompt(llm.ExtractInput{
		CVText:        "worked with go",
		PositionTitle: "Backend Engineer",
		RequiredSkills: []llm.RequiredSkill{
			{Name: "Go", RequiredLevel: 4},
		},
		NiceToHaveSkills: []llm.RequiredSkill{
			{Name: "Kubernetes"},
		},
	})

	user := msgs[len(msgs)-1].Content
	for _, want := range []string{"Backend Engineer", "Go (required level 4)", "Kubernetes", "worked with go"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}
