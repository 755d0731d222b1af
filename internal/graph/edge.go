package graph

// Well-known relation types the generator tends to emit. The field itself is
// free-form; these exist for callers that want to special-case common values.
const (
	RelationFoundation  = "foundation"
	RelationMethodology = "methodology"
	RelationApplication = "application"
	RelationSubField    = "sub_field"
	RelationAnalogy     = "analogy"
	RelationBridge      = "bridge"
)

// RelationTypes lists the well-known relation vocabulary in declaration
// order.
func RelationTypes() []string {
	return []string{
		RelationFoundation,
		RelationMethodology,
		RelationApplication,
		RelationSubField,
		RelationAnalogy,
		RelationBridge,
	}
}

// ConceptEdge connects a parent concept to a discovered child, or an input
// concept to a bridge concept. Source and Target must reference node IDs
// present in the same DiscoveryResult.
type ConceptEdge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	RelationType string  `json:"relationType"`
	Weight       float64 `json:"weight"`
	Reasoning    string  `json:"reasoning"`
}
