package dictionary

import (
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/phenocheck/internal/validation"
	"gopkg.in/yaml.v3"
)

// yamlDictionary is the YAML document layout:
//
//	variables:
//	  - name: SUBJID
//	    type: string
//	  - name: Diagnosis
//	    type: integer
//	    min: 6
//	    max: 100
type yamlDictionary struct {
	Variables []yamlVariable `yaml:"variables"`
}

type yamlVariable struct {
	Name string   `yaml:"name"`
	Type string   `yaml:"type"`
	Min  *float64 `yaml:"min"`
	Max  *float64 `yaml:"max"`
}

// LoadYAML reads a YAML dictionary. Variables are numbered in list order.
func LoadYAML(r io.Reader) (validation.Variables, error) {
	var doc yamlDictionary
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoVariables
		}
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}

	b := newBuilder()
	for i, v := range doc.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable %d: missing name", i+1)
		}
		if err := b.add(v.Name, v.Type, optional(v.Min), optional(v.Max)); err != nil {
			return nil, fmt.Errorf("variable %d: %w", i+1, err)
		}
	}

	return b.build()
}

func optional(p *float64) validation.Optional[float64] {
	if p == nil {
		return validation.None[float64]()
	}
	return validation.Some(*p)
}
