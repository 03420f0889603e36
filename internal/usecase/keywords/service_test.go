package keywords

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockChat struct {
	resp   string
	err    error
	called bool
}

func (m *mockChat) Complete(_ context.Context, _, _ string) (string, error) {
	m.called = true
	return m.resp, m.err
}

func TestExtract_ParsesAndDeduplicates(t *testing.T) {
	chat := &mockChat{resp: "Smartphone, SAMSUNG, cheap, smartphone, ab"}
	svc := New(chat, 7, zap.NewNop())

	kws, err := svc.Extract(context.Background(), "I'm looking for a cheap Samsung smartphone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"smartphone", "samsung", "cheap"}
	if len(kws) != len(want) {
		t.Fatalf("expected %d keywords, got %v", len(want), kws)
	}
	for i, kw := range want {
		if kws[i] != kw {
			t.Errorf("keyword %d: expected %q, got %q", i, kw, kws[i])
		}
	}
}

func TestExtract_CapsAtMaxKeywords(t *testing.T) {
	chat := &mockChat{resp: "one1, two2, three3, four4, five5"}
	svc := New(chat, 3, zap.NewNop())

	kws, err := svc.Extract(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kws) != 3 {
		t.Errorf("expected 3 keywords, got %v", kws)
	}
}

func TestExtract_FallsBackOnLLMError(t *testing.T) {
	chat := &mockChat{err: errors.New("rate limited")}
	svc := New(chat, 7, zap.NewNop())

	kws, err := svc.Extract(context.Background(), "the best gaming laptop for work")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(kws) == 0 {
		t.Fatal("expected fallback keywords, got none")
	}
	for _, kw := range kws {
		if kw == "the" || kw == "for" {
			t.Errorf("stop word %q leaked into fallback keywords", kw)
		}
	}
}

func TestExtract_FallsBackOnEmptyResponse(t *testing.T) {
	chat := &mockChat{resp: " , ab, "}
	svc := New(chat, 7, zap.NewNop())

	kws, err := svc.Extract(context.Background(), "wireless headphones")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kws) != 2 {
		t.Fatalf("expected tokenized fallback, got %v", kws)
	}
}
