package openapi

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// ToJSON renders the document as indented JSON. Map keys are emitted in
// sorted order, so building the same routes twice yields byte-identical
// output.
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ToYAML renders the document as YAML. The document is round-tripped
// through its JSON form first so that YAML output follows the same field
// names and deterministic key ordering as ToJSON.
func (d *Document) ToYAML() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}
