package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyDiscover is the key for the auto-mode generation prompt.
	KeyDiscover PromptKey = "Discover"
	// KeyDisciplined is the key for the discipline-constrained prompt.
	KeyDisciplined PromptKey = "Disciplined"
	// KeyBridge is the key for the bridge-discovery prompt.
	KeyBridge PromptKey = "Bridge"
	// KeyAcademicFilter is the key for the academic yes/no gate prompt.
	KeyAcademicFilter PromptKey = "AcademicFilter"
)

// promptConfig defines the default content and filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a PromptKey to its configuration. Only the user-prompt
// templates are overridable; system prompts stay fixed because the parsers
// depend on the output formats they demand.
var promptRegistry = map[PromptKey]promptConfig{
	KeyDiscover: {
		defaultContent: DiscoverUserPromptTmpl,
		filename:       "discover_prompt.txt",
	},
	KeyDisciplined: {
		defaultContent: DisciplinedUserPromptTmpl,
		filename:       "disciplined_prompt.txt",
	},
	KeyBridge: {
		defaultContent: BridgeUserPromptTmpl,
		filename:       "bridge_prompt.txt",
	},
	KeyAcademicFilter: {
		defaultContent: AcademicFilterUserPromptTmpl,
		filename:       "academic_filter_prompt.txt",
	},
}

// GetPrompt searches for a user-provided prompt file in the templates
// directory. If found, it returns that file's content; otherwise the
// hardcoded default template.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPromptPath := filepath.Join(templatesDir, config.filename)
	if _, err := os.Stat(customPromptPath); err == nil {
		content, readErr := os.ReadFile(customPromptPath)
		if readErr != nil {
			return "", fmt.Errorf("failed to read custom prompt file at %s: %w", customPromptPath, readErr)
		}
		return string(content), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("error checking for custom prompt file at %s: %w", customPromptPath, err)
	}

	return config.defaultContent, nil
}
