package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML serializes the shape as field names mapped to type strings.
func (s Shape) MarshalYAML() (any, error) {
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
	}
	return s.Describe(), nil
}

// UnmarshalYAML deserializes the shape from field names mapped to type
// strings; nested mappings become objects.
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalYAML on nil pointer")
	}
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	parsed, err := parseTypeTree(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// LoadShape parses a YAML shape description.
func LoadShape(data []byte) (Shape, error) {
	var s Shape
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}
