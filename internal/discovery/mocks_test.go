package discovery

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/conceptbridge/conceptbridge/internal/wiki"
)

// MockChatModel implements model.BaseChatModel with a scripted responder.
type MockChatModel struct {
	Respond func(input []*schema.Message) (string, error)

	mu    sync.Mutex
	Calls [][]*schema.Message
}

func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, input)
	m.mu.Unlock()
	content, err := m.Respond(input)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil // Not used by the pipeline
}

// userContent returns the last user message in a call.
func userContent(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}

// MockEmbedder implements embedding.Embedder with per-text fixed vectors.
type MockEmbedder struct {
	// VectorFor maps a lowercase text to its embedding. Texts without an
	// entry get Default.
	VectorFor map[string][]float64
	Default   []float64
	Err       error

	mu    sync.Mutex
	Calls [][]string
}

func (m *MockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, texts)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := m.VectorFor[strings.ToLower(t)]; ok {
			out[i] = v
		} else {
			out[i] = m.Default
		}
	}
	return out, nil
}

// fakeLookup implements wiki.Lookup from a static map.
type fakeLookup struct {
	entries map[string]wiki.Result
	err     error
}

func (f *fakeLookup) Lookup(ctx context.Context, term string) (wiki.Result, error) {
	if f.err != nil {
		return wiki.Result{}, f.err
	}
	if r, ok := f.entries[strings.ToLower(term)]; ok {
		return r, nil
	}
	return wiki.Result{Exists: false}, nil
}
