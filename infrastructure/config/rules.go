package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"graphcore/domain/rules"
	pkgerrors "graphcore/pkg/errors"
)

// ruleFile mirrors rules.RuleSet with optional bounds so an omitted max
// reads as unbounded
type ruleFile struct {
	Name        string `yaml:"name"`
	Cardinality []struct {
		Role     string         `yaml:"role"`
		Min      *int           `yaml:"min"`
		Max      *int           `yaml:"max"`
		Severity rules.Severity `yaml:"severity"`
	} `yaml:"cardinality"`
	Containment          []rules.ContainmentRule `yaml:"containment"`
	Connection           []rules.ConnectionRule  `yaml:"connection"`
	AllowSelfConnections bool                    `yaml:"allowSelfConnections"`
}

// LoadRuleSet reads and validates a YAML rule file
func LoadRuleSet(path string) (*rules.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read rule file %s", path)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "rule file %s", path)
	}
	return rs, nil
}

// ParseRuleSet decodes and validates a YAML rule document. Unknown keys are
// rejected.
func ParseRuleSet(data []byte) (*rules.RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc ruleFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("document is empty")
		}
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrInvalidRuleSet.Code,
			"rule set cannot be decoded").WithCause(err)
	}

	rs := &rules.RuleSet{
		Name:                 doc.Name,
		Containment:          doc.Containment,
		Connection:           doc.Connection,
		AllowSelfConnections: doc.AllowSelfConnections,
	}
	for _, c := range doc.Cardinality {
		rule := rules.CardinalityRule{Role: c.Role, Max: rules.Unbounded, Severity: c.Severity}
		if c.Min != nil {
			rule.Min = *c.Min
		}
		if c.Max != nil {
			rule.Max = *c.Max
		}
		rs.Cardinality = append(rs.Cardinality, rule)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}
