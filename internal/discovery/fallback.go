package discovery

import (
	_ "embed"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/conceptbridge/conceptbridge/internal/utils"
)

//go:embed fallback_concepts.yaml
var fallbackConceptsYAML []byte

type fallbackEntry struct {
	Name       string `yaml:"name"`
	Discipline string `yaml:"discipline"`
	Relation   string `yaml:"relation"`
}

type fallbackFile struct {
	Concepts map[string][]fallbackEntry `yaml:"concepts"`
	Default  []fallbackEntry            `yaml:"default"`
}

var fallbackConcepts = loadFallbackConcepts()

func loadFallbackConcepts() fallbackFile {
	var f fallbackFile
	if err := yaml.Unmarshal(fallbackConceptsYAML, &f); err != nil {
		// The file is embedded at build time; a parse failure means a broken
		// build, but degrading to the empty map still beats panicking.
		slog.Error("embedded fallback concepts are unparseable", "error", err)
		return fallbackFile{}
	}
	return f
}

// FallbackCandidates returns the static candidate set for seed, or the
// generic default set when the seed has no curated entry. The last line of
// defense when live generation yields nothing.
func FallbackCandidates(seed string) []Candidate {
	entries, ok := fallbackConcepts.Concepts[utils.NormalizeConcept(seed)]
	if !ok {
		entries = fallbackConcepts.Default
	}
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, Candidate{
			Name:         e.Name,
			Discipline:   e.Discipline,
			RelationType: e.Relation,
		})
	}
	return out
}
