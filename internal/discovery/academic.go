package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/conceptbridge/conceptbridge/prompts"
)

// AcademicFilter gates candidates on a yes/no completion. It fails open: a
// model error counts as academic, because dropping everything on an outage
// is worse than letting noise through.
type AcademicFilter struct {
	chatModel model.BaseChatModel
	logger    *slog.Logger
}

// NewAcademicFilter wraps a chat model.
func NewAcademicFilter(chatModel model.BaseChatModel, logger *slog.Logger) *AcademicFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcademicFilter{chatModel: chatModel, logger: logger}
}

// IsAcademic reports whether concept is an academic concept.
func (f *AcademicFilter) IsAcademic(ctx context.Context, concept string) bool {
	resp, err := f.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(prompts.AcademicFilterSystemPrompt),
		schema.UserMessage(fmt.Sprintf(prompts.AcademicFilterUserPromptTmpl, concept)),
	})
	if err != nil {
		f.logger.Warn("academic filter unavailable, failing open", "concept", concept, "error", err)
		return true
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	return strings.HasPrefix(answer, "yes")
}

// FilterCandidates keeps the candidates that pass the gate. If the gate
// would remove everything, the unfiltered list is returned instead and
// reverted is true: over-filtering must never empty a result on its own.
func (f *AcademicFilter) FilterCandidates(ctx context.Context, candidates []Candidate) (kept []Candidate, reverted bool) {
	if len(candidates) == 0 {
		return candidates, false
	}

	kept = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if f.IsAcademic(ctx, c.Name) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		f.logger.Warn("academic filter removed every candidate, reverting to unfiltered list",
			"count", len(candidates))
		return candidates, true
	}
	return kept, false
}
