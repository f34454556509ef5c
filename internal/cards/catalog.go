package cards

import (
	"fmt"

	"github.com/google/uuid"
)

// Catalog is the immutable card template lookup keyed by template id.
// Instances minted from it never alias template state.
type Catalog struct {
	templates map[string]*Card
}

// NewCatalog builds a catalog from templates, rejecting duplicate ids and
// cards whose payload does not match their type tag.
func NewCatalog(templates []*Card) (*Catalog, error) {
	byID := make(map[string]*Card, len(templates))
	for _, tpl := range templates {
		if tpl.ID == "" {
			return nil, fmt.Errorf("card %q has no template id", tpl.Name)
		}
		if _, exists := byID[tpl.ID]; exists {
			return nil, fmt.Errorf("duplicate card template id %s", tpl.ID)
		}
		if err := validatePayload(tpl); err != nil {
			return nil, err
		}
		byID[tpl.ID] = tpl
	}
	return &Catalog{templates: byID}, nil
}

func validatePayload(c *Card) error {
	var want bool
	switch c.Type {
	case TypeMission:
		want = c.Mission != nil
	case TypePersonnel:
		want = c.Personnel != nil
	case TypeShip:
		want = c.Ship != nil
	case TypeDilemma:
		want = c.Dilemma != nil
	case TypeEvent, TypeInterrupt:
		want = c.Mission == nil && c.Personnel == nil && c.Ship == nil && c.Dilemma == nil
	default:
		return fmt.Errorf("card %s has unknown type %d", c.ID, int(c.Type))
	}
	if !want {
		return fmt.Errorf("card %s payload does not match type %s", c.ID, c.Type)
	}
	return nil
}

// Lookup returns the template for id. The returned card must not be
// mutated; use Instantiate for live copies.
func (c *Catalog) Lookup(id string) (*Card, bool) {
	tpl, ok := c.templates[id]
	return tpl, ok
}

// Size returns the number of templates in the catalog.
func (c *Catalog) Size() int {
	return len(c.templates)
}

// Instantiate mints a live instance of the template: a deep copy with a
// fresh per-instance UniqueID.
func (c *Catalog) Instantiate(id string) (*Card, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown card template %s", id)
	}
	instance := tpl.Clone()
	instance.UniqueID = uuid.NewString()
	return instance, nil
}
