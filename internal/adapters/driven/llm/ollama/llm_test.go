package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) { return p[name], nil }
func (p stubPrompts) Reload()                          {}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, "llama3:instruct", svc.ModelName())
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3:instruct", req.Model)
		assert.Equal(t, "Hello", req.Prompt)
		assert.False(t, req.Stream)
		assert.Equal(t, "json", req.Format)
		require.NotNil(t, req.Options)
		assert.Equal(t, 50, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(generateResponse{Response: `{"ok":true}`, Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL + "/"})
	out, err := svc.Generate(context.Background(), "Hello", driven.GenerateOptions{MaxTokens: 50, JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Nil(t, req.Options)

		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: "Hi"}, Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "Hello"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Hi", out)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Generate(context.Background(), "Hello", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestSummarise_UsesPromptStore(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Prompt
		_ = json.NewEncoder(w).Encode(generateResponse{Response: " Short. ", Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	svc.SetPromptStore(stubPrompts{driven.PromptSummarise: "min=%d max=%d text=%s"})

	out, err := svc.Summarise(context.Background(), "long text", 150, 30)

	require.NoError(t, err)
	assert.Equal(t, "Short.", out)
	assert.Equal(t, "min=30 max=150 text=long text", prompt)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, svc.Ping(context.Background()))

	server.Close()
	assert.Error(t, svc.Ping(context.Background()))
}

func TestEnsureModel_AlreadyInstalled(t *testing.T) {
	pulled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:instruct","model":"llama3:instruct"}]}`))
		case "/api/pull":
			pulled = true
		}
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, svc.EnsureModel(context.Background()))
	assert.False(t, pulled)
}

func TestEnsureModel_PullsMissingModel(t *testing.T) {
	var pullReq pullRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
		case "/api/pull":
			_ = json.NewDecoder(r.Body).Decode(&pullReq)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, svc.EnsureModel(context.Background()))
	assert.Equal(t, "llama3:instruct", pullReq.Model)
	assert.False(t, pullReq.Stream)
}

func TestEnsureModel_PullError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"pull model manifest: file does not exist"}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "nosuch"})
	err := svc.EnsureModel(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestCanonicalModel(t *testing.T) {
	assert.Equal(t, "mistral:latest", canonicalModel("mistral"))
	assert.Equal(t, "llama3:instruct", canonicalModel("llama3:instruct"))
	assert.Equal(t, "", canonicalModel(""))
}

func TestClose(t *testing.T) {
	assert.NoError(t, NewLLMService(LLMConfig{}).Close())
}
