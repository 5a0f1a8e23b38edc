package manifest

// Manifest describes a workspace snapshot.
type Manifest struct {
	// Name labels the workspace (informational, not part of any checksum).
	Name string `yaml:"name" json:"name" validate:"required"`

	// SupportedKinds restricts which project kinds take part in checksums.
	// Empty means every non-empty kind.
	SupportedKinds []string `yaml:"supported_kinds,omitempty" json:"supported_kinds,omitempty" validate:"omitempty,dive,required"`

	// ExternalReferences are workspace-global inputs (e.g. pinned external
	// packages) folded into every root checksum.
	ExternalReferences []string `yaml:"external_references,omitempty" json:"external_references,omitempty" validate:"omitempty,dive,required"`

	Projects []ProjectSpec `yaml:"projects" json:"projects" validate:"unique=ID,dive"`
}

// ProjectSpec declares one project.
type ProjectSpec struct {
	ID         string            `yaml:"id" json:"id" validate:"required"`
	Kind       string            `yaml:"kind" json:"kind" validate:"required"`
	References []string          `yaml:"references,omitempty" json:"references,omitempty" validate:"omitempty,dive,required"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Documents  []Document        `yaml:"documents,omitempty" json:"documents,omitempty" validate:"unique=Path,dive"`
}

// Document is one file of a project.
type Document struct {
	Path string `yaml:"path" json:"path" validate:"required"`
	Text string `yaml:"text" json:"text"`
}
