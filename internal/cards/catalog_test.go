package cards

import "testing"

func TestDemoCatalogValid(t *testing.T) {
	cat := DemoCatalog()
	if cat.Size() == 0 {
		t.Fatal("demo catalog is empty")
	}

	deck := DemoDeck()
	for _, id := range append(append(append([]string(nil), deck.Missions...), deck.Draw...), deck.Dilemmas...) {
		if _, ok := cat.Lookup(id); !ok {
			t.Errorf("demo deck references unknown template %s", id)
		}
	}
}

func TestInstantiateMintsFreshInstances(t *testing.T) {
	cat := DemoCatalog()

	a, err := cat.Instantiate("per-field-medic")
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	b, err := cat.Instantiate("per-field-medic")
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	if a.UniqueID == "" || b.UniqueID == "" {
		t.Fatal("instances must carry unique ids")
	}
	if a.UniqueID == b.UniqueID {
		t.Fatal("two instances share a unique id")
	}

	// Mutating one instance must not leak into the other or the template.
	a.Personnel.Status = StatusStopped
	a.Personnel.SkillGroups[0][0] = "Betrayal"
	if b.Personnel.Status != StatusUnstopped {
		t.Error("instance state aliased between clones")
	}
	if b.Personnel.SkillGroups[0][0] == "Betrayal" {
		t.Error("skill groups aliased between clones")
	}
}

func TestInstantiateUnknownTemplate(t *testing.T) {
	cat := DemoCatalog()
	if _, err := cat.Instantiate("no-such-card"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]*Card{
		{ID: "dup", Type: TypeEvent},
		{ID: "dup", Type: TypeEvent},
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNewCatalogRejectsMismatchedPayload(t *testing.T) {
	_, err := NewCatalog([]*Card{
		{ID: "bad", Type: TypePersonnel}, // no Personnel payload
	})
	if err == nil {
		t.Fatal("expected payload mismatch error")
	}
}
