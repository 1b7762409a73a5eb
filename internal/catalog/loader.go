package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultCampaign []byte

type rawCatalog struct {
	Turns  []Turn  `yaml:"turns"`
	Events []Event `yaml:"events"`
}

// LoadDefault builds the catalog from the embedded campaign.
func LoadDefault() (*Catalog, error) {
	return Parse(defaultCampaign)
}

// LoadFile builds the catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse builds and validates a catalog from raw YAML.
func Parse(b []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		turns:   make(map[int]*Turn, len(raw.Turns)),
		choices: make(map[string]*Choice),
		events:  make(map[string]*Event, len(raw.Events)),
	}
	for i := range raw.Turns {
		t := &raw.Turns[i]
		for j := range t.Choices {
			t.Choices[j].Turn = t.Number
		}
		c.turns[t.Number] = t
		if t.Number > c.maxTurn {
			c.maxTurn = t.Number
		}
	}
	for n := range c.turns {
		for j := range c.turns[n].Choices {
			ch := &c.turns[n].Choices[j]
			c.choices[ch.ID] = ch
		}
	}
	for i := range raw.Events {
		e := &raw.Events[i]
		c.events[e.ID] = e
		c.eventOrder = append(c.eventOrder, e.ID)
	}

	if err := validate(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}
