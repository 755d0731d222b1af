package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeTrimsAndTruncates(t *testing.T) {
	chat := &MockChatModel{Respond: func([]*schema.Message) (string, error) {
		return "\"" + strings.Repeat("x", 120) + "\"\nsecond line ignored", nil
	}}
	s := NewSummarizer(chat, nil)

	got := s.Summarize(context.Background(), "entropy", "information theory")
	assert.Len(t, []rune(got), 80)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.False(t, strings.Contains(got, "\n"))
}

func TestSummarizeEmptyOnError(t *testing.T) {
	chat := &MockChatModel{Respond: func([]*schema.Message) (string, error) {
		return "", errors.New("model down")
	}}
	s := NewSummarizer(chat, nil)
	assert.Empty(t, s.Summarize(context.Background(), "entropy", "physics"))

	var nilSummarizer Summarizer
	assert.Empty(t, nilSummarizer.Summarize(context.Background(), "entropy", "physics"))
}
