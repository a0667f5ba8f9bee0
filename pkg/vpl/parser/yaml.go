package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSpecification is the intermediate structure for parsing VPL
// documents. It matches the YAML layout before transformation to AST.
type yamlSpecification struct {
	VPLVersion  string         `yaml:"vpl_version"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Properties  []yamlProperty `yaml:"properties"`
}

// yamlProperty is the intermediate form of one property.
type yamlProperty struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Scope       *yamlScope  `yaml:"scope"`
	Pattern     yamlPattern `yaml:"pattern"`
}

// yamlScope bounds the observation window. An absent scope, or one with
// neither bound, is the global scope.
type yamlScope struct {
	After *yamlEvent `yaml:"after"`
	Until *yamlEvent `yaml:"until"`
}

// yamlPattern selects a temporal template and fills its event slots.
// Time bounds are Go duration strings ("500ms", "5s").
type yamlPattern struct {
	Kind      string     `yaml:"kind"`
	Trigger   *yamlEvent `yaml:"trigger"`
	Behaviour *yamlEvent `yaml:"behaviour"`
	MinTime   string     `yaml:"min_time"`
	MaxTime   string     `yaml:"max_time"`
}

// yamlEvent is either an atomic event (channel set) or a disjunction
// (any_of set); setting both is a structural error.
type yamlEvent struct {
	Channel   string         `yaml:"channel"`
	Alias     string         `yaml:"alias"`
	Predicate *yamlCondition `yaml:"predicate"`
	AnyOf     []yamlEvent    `yaml:"any_of"`
}

// yamlCondition is one connective or leaf of a predicate. Exactly one
// field group must be set.
type yamlCondition struct {
	AllOf   []yamlCondition `yaml:"all_of"`
	AnyOf   []yamlCondition `yaml:"any_of"`
	Not     *yamlCondition  `yaml:"not"`
	Compare *yamlComparison `yaml:"compare"`
	Call    *yamlCall       `yaml:"call"`
}

// yamlComparison is a comparison leaf.
type yamlComparison struct {
	LHS yamlOperand `yaml:"lhs"`
	Op  string      `yaml:"op"`
	RHS yamlOperand `yaml:"rhs"`
}

// yamlCall is a function call, usable as a boolean leaf or an operand.
type yamlCall struct {
	Name string        `yaml:"name"`
	Args []yamlOperand `yaml:"args"`
}

// yamlOperand is a comparison side or call argument: a dotted field
// reference ("alias.path.to.field"), a literal value, or a nested call.
type yamlOperand struct {
	Field string    `yaml:"field"`
	Value any       `yaml:"value"`
	Call  *yamlCall `yaml:"call"`

	hasValue bool
}

// UnmarshalYAML tracks whether the value key was present, so that
// explicit null and false literals are distinguishable from absence.
func (o *yamlOperand) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlOperand
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = yamlOperand(p)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "value" {
			o.hasValue = true
		}
	}
	return nil
}

// parseYAMLFile reads and parses a VPL document from disk.
func parseYAMLFile(path string) (*yamlSpecification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAMLBytes(data)
}

// parseYAMLBytes parses a VPL document from memory.
func parseYAMLBytes(data []byte) (*yamlSpecification, error) {
	var spec yamlSpecification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}
