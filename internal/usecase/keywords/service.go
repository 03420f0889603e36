// Package keywords extracts search keywords from free-form user queries.
package keywords

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const extractSystemPrompt = `Extract ONLY the keywords relevant for an e-commerce product search.
Return the keywords separated by commas.

KEEP: brands, categories, product features, important adjectives
DROP: articles, prepositions, generic verbs

Example: "I'm looking for a cheap Samsung smartphone" -> "smartphone, Samsung, cheap"`

// Service extracts keywords via an LLM, with a local tokenizer fallback
// when the provider is unavailable.
type Service struct {
	llm         ChatCompleter
	maxKeywords int
	logger      *zap.Logger
}

// New creates a keyword extraction service.
func New(llm ChatCompleter, maxKeywords int, logger *zap.Logger) *Service {
	if maxKeywords <= 0 {
		maxKeywords = 7
	}
	return &Service{llm: llm, maxKeywords: maxKeywords, logger: logger}
}

// Extract returns lowercase, deduplicated keywords for the query.
// An LLM failure degrades to simple stop-word tokenization, never to an error.
func (s *Service) Extract(ctx context.Context, query string) ([]string, error) {
	resp, err := s.llm.Complete(ctx, extractSystemPrompt,
		fmt.Sprintf("Extract the keywords from: %q", query))
	if err != nil {
		s.logger.Warn("keyword extraction via LLM failed, using local fallback", zap.Error(err))
		return s.tokenize(query), nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(resp, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if len(kw) <= 2 {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
		if len(out) >= s.maxKeywords {
			break
		}
	}

	if len(out) == 0 {
		return s.tokenize(query), nil
	}
	return out, nil
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "you": {}, "your": {}, "can": {}, "about": {},
	"have": {}, "what": {}, "which": {}, "looking": {}, "want": {},
	"need": {}, "some": {}, "any": {}, "from": {}, "not": {},
}

// tokenize is the local fallback: lowercase words longer than two
// characters that are not stop words, deduplicated, capped at five.
func (s *Service) tokenize(query string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?\"'()")
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) >= 5 {
			break
		}
	}
	return out
}
