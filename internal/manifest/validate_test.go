package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		Name: "ws",
		Projects: []ProjectSpec{
			{ID: "a", Kind: "go", References: []string{"b", "missing"}, Documents: []Document{{Path: "a.go"}}},
			{ID: "b", Kind: "go"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(validManifest()), "dangling references are allowed")
	assert.NoError(t, Validate(&Manifest{Name: "empty"}))
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Manifest)
		field  string
	}{
		{"missing name", func(m *Manifest) { m.Name = "" }, "name"},
		{"missing id", func(m *Manifest) { m.Projects[1].ID = "" }, "projects[1].id"},
		{"missing kind", func(m *Manifest) { m.Projects[0].Kind = "" }, "projects[0].kind"},
		{"duplicate id", func(m *Manifest) { m.Projects[1].ID = "a" }, "projects"},
		{"empty reference", func(m *Manifest) { m.Projects[0].References = []string{""} }, "projects[0].references[0]"},
		{"missing document path", func(m *Manifest) { m.Projects[0].Documents[0].Path = "" }, "projects[0].documents[0].path"},
		{
			"duplicate document path",
			func(m *Manifest) {
				m.Projects[0].Documents = []Document{{Path: "x"}, {Path: "x", Text: "other"}}
			},
			"projects[0].documents",
		},
		{"empty supported kind", func(m *Manifest) { m.SupportedKinds = []string{"go", ""} }, "supported_kinds[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			err := Validate(m)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Contains(t, err.Error(), "invalid manifest")
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
