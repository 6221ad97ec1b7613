package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nlq/internal/ir"
)

// Dataset is a YAML description of an entity index.
//
//	entities:
//	  - id: film:inception
//	    label: Inception
//	    kind: instance
//	    aliases: ["Inception (2010)"]
//	    types: ["class:film"]
//	edges:
//	  - subject: film:inception
//	    predicate: prop:director
//	    object: person:nolan
type Dataset struct {
	Entities []EntityRecord `yaml:"entities" json:"entities"`
	Edges    []EdgeRecord   `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// EntityRecord is one entity of a dataset.
type EntityRecord struct {
	ID      string        `yaml:"id" json:"id"`
	Label   string        `yaml:"label" json:"label"`
	Kind    ir.EntityKind `yaml:"kind" json:"kind"`
	Aliases []string      `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Types lists class ids; instances only.
	Types []string `yaml:"types,omitempty" json:"types,omitempty"`
}

// Entity returns the record as an ir.Entity.
func (r EntityRecord) Entity() ir.Entity {
	return ir.Entity{ID: r.ID, Label: r.Label, Kind: r.Kind}
}

// EdgeRecord is one fact of a dataset.
type EdgeRecord struct {
	Subject   string `yaml:"subject" json:"subject"`
	Predicate string `yaml:"predicate" json:"predicate"`
	Object    string `yaml:"object" json:"object"`
}

// LoadDataset reads and parses a dataset YAML file.
// Unknown fields are rejected.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset parses and validates dataset YAML.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &ds, nil
}

// Validate checks the dataset is self-consistent: unique ids, known kinds,
// types pointing at classes and edge predicates that are properties.
// All problems are reported together.
func (d *Dataset) Validate() error {
	var errs []error
	kinds := make(map[string]ir.EntityKind, len(d.Entities))

	for i, rec := range d.Entities {
		if err := validateEntity(rec.Entity()); err != nil {
			errs = append(errs, fmt.Errorf("entities[%d]: %w", i, err))
			continue
		}
		if _, dup := kinds[rec.ID]; dup {
			errs = append(errs, fmt.Errorf("entities[%d]: duplicate id %s", i, rec.ID))
			continue
		}
		kinds[rec.ID] = rec.Kind
	}

	for i, rec := range d.Entities {
		if len(rec.Types) > 0 && rec.Kind != ir.EntityInstance {
			errs = append(errs, fmt.Errorf("entities[%d]: only instances have types", i))
		}
		for _, classID := range rec.Types {
			if kinds[classID] != ir.EntityClass {
				errs = append(errs, fmt.Errorf("entities[%d]: type %s is not a class in the dataset", i, classID))
			}
		}
	}

	for i, e := range d.Edges {
		if _, ok := kinds[e.Subject]; !ok {
			errs = append(errs, fmt.Errorf("edges[%d]: unknown subject %s", i, e.Subject))
		}
		if kinds[e.Predicate] != ir.EntityProperty {
			errs = append(errs, fmt.Errorf("edges[%d]: predicate %s is not a property in the dataset", i, e.Predicate))
		}
		if _, ok := kinds[e.Object]; !ok {
			errs = append(errs, fmt.Errorf("edges[%d]: unknown object %s", i, e.Object))
		}
	}

	return errors.Join(errs...)
}
