package prompts

// LLM prompt templates for the discovery pipeline. The pipe-delimited output
// formats are load-bearing: the candidate parser expects exactly the field
// arity each prompt demands, and silently drops lines that do not conform.
const (
	// DiscoverSystemPrompt sets the persona for auto-mode candidate generation.
	DiscoverSystemPrompt = `You are an academic concept-mapping assistant. You identify real, established academic concepts related to a given concept across disciplines. Output one concept per line in the exact format requested, with no numbering, explanations, or extra text.`

	// DiscoverUserPromptTmpl asks for related concepts in the 3-field pipe
	// format. Placeholders: seed concept, count, known-concepts list, count.
	DiscoverUserPromptTmpl = `Generate %d academic concepts related to "%s".

Requirements:
1. Every concept must be a real, established academic concept.
2. Each must have a clear academic relationship to "%s".
3. Do not include any of these existing concepts: %s
4. Cover different relation types: foundation, methodology, application, sub_field.

Output format (one concept per line):
name|discipline|relationType

Example:
machine learning|computer science|sub_field
neural network|artificial intelligence|foundation
supervised learning|methodology|methodology

Output exactly %d concepts now, nothing else:`

	// DisciplinedSystemPrompt sets the persona for discipline-constrained
	// generation.
	DisciplinedSystemPrompt = `You are a cross-disciplinary knowledge-mining expert. You must generate exactly the requested number of concepts, one per line, in the format: name|discipline|relationType|principle. No explanations, numbering, or extra content.`

	// DisciplinedUserPromptTmpl asks for candidates restricted to an
	// allow-list of disciplines, in the 4-field pipe format. Placeholders:
	// seed, count, discipline list, seed, count.
	DisciplinedUserPromptTmpl = `Task: generate exactly %[2]d academic concepts related to "%[1]s".

Only look within these disciplines:
%[3]s

Key requirements:
1. Generate the full %[2]d concepts.
2. Every concept must belong to one of the listed disciplines. Do not stray into other fields.
3. Multiple concepts from the same discipline are fine when they cover different aspects (theory, methods, theorems, tools, applications).
4. Explain each concept's direct connection to "%[1]s" from its discipline's perspective.

Output format (one concept per line, no numbering):
name|discipline|relationType|principle

Example (seed "neural network", discipline "mathematics"):
gradient descent|mathematics|methodology|core optimization method for training
backpropagation|mathematics|foundation|chain rule computing loss gradients
matrix multiplication|mathematics|foundation|basic operation of forward propagation

Output the %[2]d concepts now:`

	// BridgeSystemPrompt sets the persona for multi-concept bridge discovery.
	BridgeSystemPrompt = `You are a cross-disciplinary concept-connection expert, skilled at surfacing deep links between seemingly unrelated concepts.`

	// BridgeUserPromptTmpl asks for bridge concepts connecting every input
	// concept, in the 4-field bridge pipe format. Placeholders: concept list,
	// count.
	BridgeUserPromptTmpl = `Analyze the cross-disciplinary connections among the following concepts and find "bridge concepts" that link them.

Input concepts:
%s

Core requirements:
1. A bridge concept must relate to ALL of the input concepts.
2. Prefer connections that cross disciplines.
3. Connections must rest on shared mathematical principles, physical mechanisms, or methodology, not surface naming.

Bridge tiers (strongest first):
- direct: clearly related to every input concept
- indirect: connects all inputs within one or two steps
- principle: embodies the same underlying mathematical or philosophical principle

Output format (one bridge per line, no numbering):
name|bridgeType|connectedConcepts|principle

bridgeType is one of: direct, indirect, principle.
connectedConcepts is a comma-separated list of the input concepts it links.

Example for inputs ["entropy", "least squares"]:
information theory|direct|entropy,least squares|both quantify uncertainty and information loss
optimization theory|principle|entropy,least squares|entropy maximization and error minimization are both optimization problems

Output at least %d bridge concepts now:`

	// AcademicFilterSystemPrompt constrains the academic gate to a binary
	// answer.
	AcademicFilterSystemPrompt = `You are an academic concept filter. Decide whether the input is an academic concept. Answer only "yes" or "no".`

	// AcademicFilterUserPromptTmpl is the single yes/no question. Placeholder:
	// concept name.
	AcademicFilterUserPromptTmpl = `Is "%s" an academic concept?`

	// BriefSummaryPromptTmpl asks for a one-line gloss of a concept.
	// Placeholders: concept, parent concept.
	BriefSummaryPromptTmpl = `In at most 80 characters, state what "%s" is and how it relates to "%s". Plain text, one line, no quotes:`

	// FallbackDefinitionTmpl is the templated definition used when the
	// knowledge-lookup collaborator has no entry for a concept. Placeholders:
	// concept, discipline.
	FallbackDefinitionTmpl = `%s is a concept in %s related to the queried topic; no authoritative definition was found.`
)
