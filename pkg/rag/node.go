package rag

// DocumentType classifies where a piece of story material lives in a project
// workspace. It drives the source label shown to the model for every
// retrieved snippet.
type DocumentType string

const (
	DocTypePlan      DocumentType = "plan"
	DocTypeSynopsis  DocumentType = "synopsis"
	DocTypeWorld     DocumentType = "world"
	DocTypeCharacter DocumentType = "character"
	DocTypeScene     DocumentType = "scene"
	DocTypeNote      DocumentType = "note"
	DocTypeUnknown   DocumentType = "unknown"
)

// ParseDocumentType normalizes a stored type string. Unknown values map to
// DocTypeUnknown rather than failing, old rows must keep loading.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocTypePlan, DocTypeSynopsis, DocTypeWorld, DocTypeCharacter, DocTypeScene, DocTypeNote:
		return DocumentType(s)
	default:
		return DocTypeUnknown
	}
}

// Label returns the human-readable form used in prompt source labels.
func (t DocumentType) Label() string {
	switch t {
	case DocTypePlan:
		return "Plan"
	case DocTypeSynopsis:
		return "Synopsis"
	case DocTypeWorld:
		return "World Note"
	case DocTypeCharacter:
		return "Character Sheet"
	case DocTypeScene:
		return "Scene"
	case DocTypeNote:
		return "Note"
	default:
		return "Document"
	}
}

// NodeMeta carries the provenance of a retrieved snippet. SourcePath is the
// workspace file the snippet was indexed from and may be empty for material
// that never lived on disk (e.g. ad-hoc pasted text).
type NodeMeta struct {
	SourcePath    string
	DocType       DocumentType
	DocTitle      string
	CharacterName string
	ProjectID     string
}

// Node is one retrieved snippet with its similarity score. Higher scores are
// more relevant.
type Node struct {
	ID    string
	Text  string
	Score float64
	Meta  NodeMeta
}

// SourceRef is the provenance entry returned to callers alongside a generated
// answer, one per retrieved node that made it into the prompt.
type SourceRef struct {
	Path     string       `json:"path,omitempty"`
	DocType  DocumentType `json:"document_type"`
	DocTitle string       `json:"document_title"`
	Score    float64      `json:"score"`
}

// RefOf builds the provenance entry for a node.
func RefOf(n Node) SourceRef {
	return SourceRef{
		Path:     n.Meta.SourcePath,
		DocType:  n.Meta.DocType,
		DocTitle: n.Meta.DocTitle,
		Score:    n.Score,
	}
}
