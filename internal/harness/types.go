package harness

import (
	"github.com/roach88/snapsum/internal/checksum"
)

// TreeEntry is one tree computed while running a scenario.
type TreeEntry struct {
	Manifest string        `json:"manifest"`
	Tree     checksum.Tree `json:"tree"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trees lists every computed tree in the order it was first needed.
	// Used for golden comparison.
	Trees []TreeEntry `json:"trees"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trees:  []TreeEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTree appends a computed tree.
func (r *Result) AddTree(manifest string, tree checksum.Tree) {
	r.Trees = append(r.Trees, TreeEntry{Manifest: manifest, Tree: tree})
}
