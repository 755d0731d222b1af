package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/conceptbridge/conceptbridge/internal/utils"
	"github.com/conceptbridge/conceptbridge/prompts"
)

// maxBriefSummaryLen bounds the one-line gloss attached to nodes.
const maxBriefSummaryLen = 80

// Summarizer generates the short gloss shown next to a node label. Entirely
// optional: a failure yields an empty summary, never an error.
type Summarizer struct {
	chatModel model.BaseChatModel
	logger    *slog.Logger
}

// NewSummarizer wraps a chat model.
func NewSummarizer(chatModel model.BaseChatModel, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{chatModel: chatModel, logger: logger}
}

// Summarize returns a one-line gloss of concept in relation to parent,
// truncated to the display limit.
func (s *Summarizer) Summarize(ctx context.Context, concept, parent string) string {
	if s.chatModel == nil {
		return ""
	}
	resp, err := s.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(prompts.BriefSummaryPromptTmpl, concept, parent)),
	})
	if err != nil {
		s.logger.Debug("brief summary generation failed", "concept", concept, "error", err)
		return ""
	}

	gloss := strings.TrimSpace(resp.Content)
	if idx := strings.IndexByte(gloss, '\n'); idx >= 0 {
		gloss = gloss[:idx]
	}
	gloss = strings.Trim(strings.TrimSpace(gloss), `"`)
	return utils.Truncate(gloss, maxBriefSummaryLen)
}
