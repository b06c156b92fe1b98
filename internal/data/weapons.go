package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponTemplate is one entry of the weapon table.
type WeaponTemplate struct {
	TemplateID  int32  `yaml:"template_id"`
	Name        string `yaml:"name"`
	Class       string `yaml:"class"`        // "pistol", "rifle", "grenade", ...
	GroundModel string `yaml:"ground_model"` // model shown while lying on the ground
	Persistent  bool   `yaml:"persistent"`   // map-placed, never janitored
}

// WeaponTable is the loaded weapon template table.
type WeaponTable struct {
	byID  map[int32]*WeaponTemplate
	order []int32
}

// LoadWeaponTable reads weapon templates from a YAML list.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon table %s: %w", path, err)
	}

	var templates []WeaponTemplate
	if err := yaml.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parse weapon table %s: %w", path, err)
	}

	t := &WeaponTable{
		byID:  make(map[int32]*WeaponTemplate, len(templates)),
		order: make([]int32, 0, len(templates)),
	}
	for i := range templates {
		tmpl := &templates[i]
		if _, dup := t.byID[tmpl.TemplateID]; dup {
			return nil, fmt.Errorf("weapon table %s: duplicate template_id %d", path, tmpl.TemplateID)
		}
		t.byID[tmpl.TemplateID] = tmpl
		t.order = append(t.order, tmpl.TemplateID)
	}
	return t, nil
}

// Get returns the template for an ID, or nil.
func (t *WeaponTable) Get(id int32) *WeaponTemplate {
	return t.byID[id]
}

// Count returns the number of loaded templates.
func (t *WeaponTable) Count() int {
	return len(t.byID)
}

// IDs returns template IDs in file order.
func (t *WeaponTable) IDs() []int32 {
	return t.order
}
