package snapshot

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IntList 既接受单个整数也接受整数列表
type IntList []int

// UnmarshalYAML 实现 yaml.Unmarshaler
func (l *IntList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*l = nil
			return nil
		}
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = IntList{v}
		return nil
	case yaml.SequenceNode:
		var v []int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = v
		return nil
	default:
		return fmt.Errorf("line %d: expected integer or list of integers", node.Line)
	}
}

// StringList 既接受单个字符串也接受字符串列表
type StringList []string

// UnmarshalYAML 实现 yaml.Unmarshaler
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = v
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}
