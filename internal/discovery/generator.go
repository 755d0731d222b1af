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

// Generator produces candidate concepts from a chat model. Generation is
// best-effort: a model error or an unparseable completion yields an empty
// slice, never an error, and the orchestrator falls back from there.
type Generator struct {
	chatModel model.BaseChatModel
	// oversample scales yieldCount before asking the model, so selection has
	// material to discard.
	oversample int
	// templatesDir points at user-supplied prompt overrides; empty means the
	// built-in templates.
	templatesDir string
	logger       *slog.Logger
}

// NewGenerator wraps a chat model. oversample values below 1 are treated
// as 1.
func NewGenerator(chatModel model.BaseChatModel, oversample int, logger *slog.Logger) *Generator {
	if oversample < 1 {
		oversample = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{chatModel: chatModel, oversample: oversample, logger: logger}
}

// SetTemplatesDir points the generator at a directory of prompt overrides.
func (g *Generator) SetTemplatesDir(dir string) {
	g.templatesDir = dir
}

// userPrompt resolves the template for key, preferring a file override.
func (g *Generator) userPrompt(key prompts.PromptKey) string {
	tmpl, err := prompts.GetPrompt(key, g.templatesDir)
	if err != nil {
		g.logger.Warn("prompt override lookup failed, using built-in template", "key", key, "error", err)
		switch key {
		case prompts.KeyDisciplined:
			return prompts.DisciplinedUserPromptTmpl
		case prompts.KeyBridge:
			return prompts.BridgeUserPromptTmpl
		default:
			return prompts.DiscoverUserPromptTmpl
		}
	}
	return tmpl
}

// Generate asks for oversample*yieldCount related concepts for seed and
// parses the pipe-delimited reply. Names in known are excluded.
func (g *Generator) Generate(ctx context.Context, seed string, known map[string]struct{}, yieldCount int) []Candidate {
	requestCount := yieldCount * g.oversample
	prompt := fmt.Sprintf(g.userPrompt(prompts.KeyDiscover),
		requestCount, seed, seed, knownList(known), requestCount)

	text, err := g.complete(ctx, prompts.DiscoverSystemPrompt, prompt)
	if err != nil {
		g.logger.Warn("candidate generation failed", "seed", seed, "error", err)
		return nil
	}
	return ParseCandidates(text, known)
}

// GenerateDisciplined is Generate constrained to an allow-list of
// disciplines. The prompt instructs the model to stay inside the list, and
// replies outside it are dropped here anyway: the model treats the list as a
// suggestion, the pipeline treats it as a contract.
func (g *Generator) GenerateDisciplined(ctx context.Context, seed string, known map[string]struct{}, disciplines []string, yieldCount int) []Candidate {
	requestCount := yieldCount * g.oversample
	prompt := fmt.Sprintf(g.userPrompt(prompts.KeyDisciplined),
		seed, requestCount, "- "+strings.Join(disciplines, "\n- "))

	text, err := g.complete(ctx, prompts.DisciplinedSystemPrompt, prompt)
	if err != nil {
		g.logger.Warn("disciplined generation failed", "seed", seed, "error", err)
		return nil
	}

	allowed := make(map[string]struct{}, len(disciplines))
	for _, d := range disciplines {
		allowed[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	candidates := ParseCandidates(text, known)
	kept := candidates[:0]
	for _, c := range candidates {
		if _, ok := allowed[strings.ToLower(c.Discipline)]; ok {
			kept = append(kept, c)
			continue
		}
		g.logger.Debug("dropping off-list candidate", "name", c.Name, "discipline", c.Discipline)
	}
	return kept
}

// GenerateBridges asks for concepts linking every seed at once.
func (g *Generator) GenerateBridges(ctx context.Context, seeds []string, yieldCount int) []BridgeCandidate {
	requestCount := yieldCount * g.oversample
	var list strings.Builder
	for i, s := range seeds {
		fmt.Fprintf(&list, "%d. %s\n", i+1, s)
	}
	prompt := fmt.Sprintf(g.userPrompt(prompts.KeyBridge), list.String(), requestCount)

	text, err := g.complete(ctx, prompts.BridgeSystemPrompt, prompt)
	if err != nil {
		g.logger.Warn("bridge generation failed", "seeds", seeds, "error", err)
		return nil
	}
	return ParseBridgeCandidates(text)
}

func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func knownList(known map[string]struct{}) string {
	if len(known) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
