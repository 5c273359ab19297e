package ships

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// FrequencyTolerance is the allowed error on a role's frequency total.
const FrequencyTolerance = 1e-6

//go:embed data/ship_classes.yaml
var defaultCatalogYAML []byte

//go:embed data/ship_classes.schema.json
var catalogSchemaJSON string

var catalogSchema = jsonschema.MustCompileString("ship_classes.schema.json", catalogSchemaJSON)

// Catalog is the set of ship classes available to a run.
type Catalog struct {
	classes map[string]*Class
	names   []string
}

type catalogFile struct {
	ShipClasses []*Class `yaml:"ship_classes"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ship classes: %w", err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog validates raw YAML against the catalog schema, decodes it,
// and checks per-role frequency totals.
func ParseCatalog(raw []byte) (*Catalog, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("ship classes: %v", err)}
	}
	c, err := NewCatalog(f.ShipClasses)
	if err != nil {
		return nil, err
	}
	if err := ValidateFrequencies(c.Classes()); err != nil {
		return nil, err
	}
	return c, nil
}

// validateSchema converts the YAML document to JSON values and validates it.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("ship classes: %v", err)}
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("ship classes: %v", err)}
	}
	var v any
	if err := json.Unmarshal(buf, &v); err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("ship classes: %v", err)}
	}
	if err := catalogSchema.Validate(v); err != nil {
		return &ConfigurationError{Msg: fmt.Sprintf("ship classes schema: %v", err)}
	}
	return nil
}

// NewCatalog builds a catalog from classes. Names must be unique.
func NewCatalog(classes []*Class) (*Catalog, error) {
	c := &Catalog{classes: make(map[string]*Class, len(classes))}
	for _, cl := range classes {
		if err := cl.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.classes[cl.Name]; dup {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("duplicate ship class %q", cl.Name)}
		}
		c.classes[cl.Name] = cl
		c.names = append(c.names, cl.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the named class, or nil.
func (c *Catalog) Get(name string) *Class {
	return c.classes[name]
}

// Classes returns all classes sorted by name.
func (c *Catalog) Classes() []*Class {
	out := make([]*Class, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.classes[n])
	}
	return out
}

// ByRole returns the classes of one role sorted by name.
func (c *Catalog) ByRole(role Role) []*Class {
	var out []*Class
	for _, cl := range c.Classes() {
		if cl.Role == role {
			out = append(out, cl)
		}
	}
	return out
}

// Roles returns the roles present in the catalog, in AllRoles order.
func (c *Catalog) Roles() []Role {
	var out []Role
	for _, r := range AllRoles {
		if len(c.ByRole(r)) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of classes.
func (c *Catalog) Len() int {
	return len(c.names)
}

// FilterRoles returns a catalog restricted to roles. A requested role with
// no classes is a configuration error.
func (c *Catalog) FilterRoles(roles []Role) (*Catalog, error) {
	if len(roles) == 0 {
		return nil, &ConfigurationError{Msg: "no ship roles selected"}
	}
	var kept []*Class
	for _, r := range roles {
		classes := c.ByRole(r)
		if len(classes) == 0 {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("requested role '%s' has no ship classes", r)}
		}
		kept = append(kept, classes...)
	}
	return NewCatalog(kept)
}

// ValidateFrequencies checks that the frequencies within each role sum to 1.
func ValidateFrequencies(classes []*Class) error {
	totals := make(map[Role]float64)
	for _, cl := range classes {
		if cl.Frequency < 0 {
			return &ConfigurationError{Msg: fmt.Sprintf("ship class %q: negative frequency", cl.Name)}
		}
		totals[cl.Role] += cl.Frequency
	}
	roles := make([]Role, 0, len(totals))
	for r := range totals {
		roles = append(roles, r)
	}
	slices.Sort(roles)
	for _, r := range roles {
		if math.Abs(totals[r]-1.0) > FrequencyTolerance {
			return &ConfigurationError{Msg: fmt.Sprintf(
				"Frequency totals invalid: role '%s' sums to %.2f (expected 1.00)", r, totals[r])}
		}
	}
	return nil
}
