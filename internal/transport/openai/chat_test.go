package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/eshop-cloud/recall/internal/domain"
)

func TestChat_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-chat" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "chat.completion",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "pick the Phone X"}},
			},
		})
	}))
	defer server.Close()

	chat := NewChat(&Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		ChatModel: "test-chat",
		Logger:    zap.NewNop(),
	})

	got, err := chat.Complete(context.Background(), "be helpful", "which phone?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "pick the Phone X" {
		t.Errorf("unexpected completion: %q", got)
	}
}

func TestChat_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "chat.completion", "choices": []any{}})
	}))
	defer server.Close()

	chat := NewChat(&Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		ChatModel: "test-chat",
		Logger:    zap.NewNop(),
	})

	_, err := chat.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
}

func TestChat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
		})
	}))
	defer server.Close()

	chat := NewChat(&Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		ChatModel: "test-chat",
		Logger:    zap.NewNop(),
	})

	_, err := chat.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
}
