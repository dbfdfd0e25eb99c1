// Package builtin holds the profiles that ship with wsprofile. Definitions
// are embedded YAML and are decoded fresh on every call, so callers can never
// mutate the shipped set.
package builtin

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/klauern/wsprofile/internal/model"
)

//go:embed profiles/*.yaml
var profilesFS embed.FS

// Catalog serves the embedded built-in profiles.
type Catalog struct {
	fsys fs.FS
}

// New returns a catalog over the embedded definitions.
func New() *Catalog {
	return &Catalog{fsys: profilesFS}
}

// NewFromFS returns a catalog over arbitrary *.yaml files under profiles/ in fsys.
func NewFromFS(fsys fs.FS) *Catalog {
	return &Catalog{fsys: fsys}
}

// Load decodes every definition. Profiles are sorted by id and tagged as not
// user-defined.
func (c *Catalog) Load() ([]model.WorkspaceProfile, error) {
	matches, err := fs.Glob(c.fsys, "profiles/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing built-in profiles: %w", err)
	}

	profiles := make([]model.WorkspaceProfile, 0, len(matches))
	seen := make(map[string]string, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(c.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var p model.WorkspaceProfile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("%s: id and name are required", name)
		}
		if p.ID != model.NormalizeID(p.ID) {
			return nil, fmt.Errorf("%s: id %q is not normalized", name, p.ID)
		}
		if other, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%s: id %q already defined in %s", name, p.ID, other)
		}
		seen[p.ID] = name

		p.IsUserDefined = false
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ID < profiles[j].ID
	})
	return profiles, nil
}

// Profiles returns the built-in profiles. It panics if the embedded
// definitions are malformed, which the package tests rule out.
func (c *Catalog) Profiles() []model.WorkspaceProfile {
	profiles, err := c.Load()
	if err != nil {
		panic(fmt.Sprintf("builtin: %v", err))
	}
	return profiles
}
