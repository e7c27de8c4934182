package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Definition is the static description of one item type loaded from YAML.
type Definition struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Useable   bool   `yaml:"useable"`
	MultiUse  bool   `yaml:"multi_use"`
	Container bool   `yaml:"container"`
	Moveable  bool   `yaml:"moveable"`
	Readable  bool   `yaml:"readable"`
}

// Validate checks that the Definition satisfies its invariants.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID < 1 {
		errs = append(errs, fmt.Errorf("id must be >= 1, got %d", d.ID))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func (d *Definition) capabilities() Capabilities {
	return Capabilities{
		Useable:   d.Useable,
		MultiUse:  d.MultiUse,
		Container: d.Container,
		Moveable:  d.Moveable,
		Readable:  d.Readable,
	}
}

type catalogFile struct {
	Items []Definition `yaml:"items"`
}

// Catalog is an in-memory Provider backed by item definitions.
// Unknown type ids resolve to no capabilities and a generic name.
type Catalog struct {
	defs map[int]*Definition
}

// NewCatalog builds a Catalog from defs. Duplicate or invalid definitions are
// rejected.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[int]*Definition, len(defs))}
	for i := range defs {
		if err := c.add(defs[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.defs[d.ID]; exists {
		return fmt.Errorf("item: catalog: id %d already registered", d.ID)
	}
	c.defs[d.ID] = &d
	return nil
}

// LoadCatalog reads every *.yaml and *.yml file in dir. Each file holds an
// `items:` list of definitions.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read directory %q: %w", dir, err)
	}

	c := &Catalog{defs: make(map[int]*Definition)}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot parse file %q: %w", path, err)
		}
		for _, d := range f.Items {
			if err := c.add(d); err != nil {
				return nil, fmt.Errorf("LoadCatalog: invalid item in %q: %w", path, err)
			}
		}
	}
	return c, nil
}

// Definition returns the definition for typeID and whether it is known.
func (c *Catalog) Definition(typeID int) (Definition, bool) {
	d, ok := c.defs[typeID]
	if !ok {
		return Definition{}, false
	}
	return *d, true
}

// Capabilities implements Provider.
func (c *Catalog) Capabilities(typeID int) Capabilities {
	if d, ok := c.defs[typeID]; ok {
		return d.capabilities()
	}
	return Capabilities{}
}

// Name implements Provider.
func (c *Catalog) Name(typeID int) string {
	if d, ok := c.defs[typeID]; ok {
		return d.Name
	}
	return fmt.Sprintf("item #%d", typeID)
}

// IDs returns every known type id in ascending order.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }
