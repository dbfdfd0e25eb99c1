package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/wsprofile/internal/model"
)

// ErrNoProfiles is returned when an import source holds no profiles.
var ErrNoProfiles = errors.New("no profiles found")

// Import reads profiles from r. The source may be a Document, a bare list of
// profiles (JSON and YAML only), or a single profile.
func Import(r io.Reader, format Format) ([]model.WorkspaceProfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var profiles []model.WorkspaceProfile
	switch format {
	case FormatJSON:
		profiles, err = importJSON(data)
	case FormatYAML:
		profiles, err = importYAML(data)
	case FormatTOML:
		profiles, err = importTOML(data)
	default:
		return nil, fmt.Errorf("cannot import %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s profiles: %w", format, err)
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	return profiles, nil
}

func importJSON(data []byte) ([]model.WorkspaceProfile, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []model.WorkspaceProfile
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if len(doc.Profiles) > 0 {
		return doc.Profiles, nil
	}

	var single model.WorkspaceProfile
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return singleOrNone(single), nil
}

func importYAML(data []byte) ([]model.WorkspaceProfile, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var list []model.WorkspaceProfile
		err := node.Decode(&list)
		return list, err
	}

	var doc Document
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Profiles) > 0 {
		return doc.Profiles, nil
	}

	var single model.WorkspaceProfile
	if err := node.Decode(&single); err != nil {
		return nil, err
	}
	return singleOrNone(single), nil
}

func importTOML(data []byte) ([]model.WorkspaceProfile, error) {
	var doc Document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	if len(doc.Profiles) > 0 {
		return doc.Profiles, nil
	}

	var single model.WorkspaceProfile
	if _, err := toml.Decode(string(data), &single); err != nil {
		return nil, err
	}
	return singleOrNone(single), nil
}

func singleOrNone(p model.WorkspaceProfile) []model.WorkspaceProfile {
	if p.ID == "" && p.Name == "" {
		return nil
	}
	return []model.WorkspaceProfile{p}
}
