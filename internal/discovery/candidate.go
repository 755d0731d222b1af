// Package discovery implements the concept-discovery pipeline: candidate
// generation, academic filtering, embedding-similarity scoring, threshold
// selection, credibility fusion, and node assembly, behind the auto,
// discipline-constrained, bridge, and expand access modes.
package discovery

import (
	"strings"

	"github.com/conceptbridge/conceptbridge/internal/utils"
)

// Candidate is a generated concept before scoring and admission.
type Candidate struct {
	Name         string
	Discipline   string
	RelationType string
	// Principle carries the generator's one-line rationale in disciplined and
	// bridge modes; empty in auto mode.
	Principle string
}

// BridgeCandidate is a candidate proposed to link several seed concepts.
type BridgeCandidate struct {
	Name string
	// BridgeType is one of "direct", "indirect", "principle", strongest first.
	BridgeType string
	// ConnectedConcepts echoes which seeds the generator claims it links.
	ConnectedConcepts []string
	Principle         string
}

// Bridge-tier tags, strongest first.
const (
	BridgeDirect    = "direct"
	BridgeIndirect  = "indirect"
	BridgePrinciple = "principle"
)

// bridgeTierRank orders bridge tiers for selection priority. Unknown tiers
// sort last.
func bridgeTierRank(tier string) int {
	switch tier {
	case BridgeDirect:
		return 0
	case BridgeIndirect:
		return 1
	case BridgePrinciple:
		return 2
	default:
		return 3
	}
}

// ParseCandidateLine parses one pipe-delimited generator line. Auto mode
// emits three fields (name|discipline|relationType), disciplined mode four
// (…|principle). A line with the wrong arity or an empty required field is
// noise, reported via ok=false and discarded by the caller.
func ParseCandidateLine(line string) (Candidate, bool) {
	line = utils.StripListNumbering(strings.TrimSpace(line))
	if line == "" {
		return Candidate{}, false
	}

	fields := strings.Split(line, "|")
	if len(fields) != 3 && len(fields) != 4 {
		return Candidate{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" || fields[1] == "" || fields[2] == "" {
		return Candidate{}, false
	}

	c := Candidate{
		Name:         fields[0],
		Discipline:   fields[1],
		RelationType: fields[2],
	}
	if len(fields) == 4 {
		c.Principle = fields[3]
	}
	return c, true
}

// ParseBridgeLine parses one bridge-mode line in the format
// name|bridgeType|connectedConcepts|principle, where connectedConcepts is
// comma-separated.
func ParseBridgeLine(line string) (BridgeCandidate, bool) {
	line = utils.StripListNumbering(strings.TrimSpace(line))
	if line == "" {
		return BridgeCandidate{}, false
	}

	fields := strings.Split(line, "|")
	if len(fields) != 4 {
		return BridgeCandidate{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" || fields[1] == "" {
		return BridgeCandidate{}, false
	}

	var connected []string
	for _, part := range strings.Split(fields[2], ",") {
		if part = strings.TrimSpace(part); part != "" {
			connected = append(connected, part)
		}
	}

	return BridgeCandidate{
		Name:              fields[0],
		BridgeType:        strings.ToLower(fields[1]),
		ConnectedConcepts: connected,
		Principle:         fields[3],
	}, true
}

// ParseCandidates parses a whole completion into candidates, silently
// skipping unparseable lines, and drops any candidate whose name matches an
// entry of known case-insensitively.
func ParseCandidates(text string, known map[string]struct{}) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		c, ok := ParseCandidateLine(line)
		if !ok {
			continue
		}
		key := utils.NormalizeConcept(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		if _, exists := known[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ParseBridgeCandidates parses a bridge-mode completion, skipping noise and
// duplicates.
func ParseBridgeCandidates(text string) []BridgeCandidate {
	var out []BridgeCandidate
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		b, ok := ParseBridgeLine(line)
		if !ok {
			continue
		}
		key := utils.NormalizeConcept(b.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}

// KnownSet builds the normalized dedup set from concept labels.
func KnownSet(labels ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[utils.NormalizeConcept(l)] = struct{}{}
	}
	return set
}
