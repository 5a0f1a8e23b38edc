package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// topLevelFields lists the fields a manifest may declare.
var topLevelFields = []string{"name", "supported_kinds", "external_references", "projects"}

// Parse decodes a YAML manifest. Unknown fields are rejected.
// The result is not validated; see Validate.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Field: "manifest", Message: "empty document"}
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ParseCUE evaluates a CUE manifest. filename is used for error positions.
// The manifest fields sit at the top level of the CUE value; unknown
// top-level fields are rejected.
func ParseCUE(filename string, src []byte) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if !slices.Contains(topLevelFields, iter.Label()) {
			return nil, &Error{
				Field:   iter.Label(),
				Message: "unknown manifest field",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	var m Manifest
	if err := v.Decode(&m); err != nil {
		return nil, formatCUEError(err)
	}
	return &m, nil
}
