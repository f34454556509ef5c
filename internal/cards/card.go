package cards

import (
	"fmt"
)

// CardType discriminates the closed set of card kinds. Exactly one typed
// payload on Card is non-nil for Mission, Personnel, Ship and Dilemma;
// Event and Interrupt cards carry only abilities.
type CardType int

const (
	TypeMission CardType = iota
	TypePersonnel
	TypeShip
	TypeEvent
	TypeInterrupt
	TypeDilemma
)

var cardTypeNames = map[CardType]string{
	TypeMission:   "MISSION",
	TypePersonnel: "PERSONNEL",
	TypeShip:      "SHIP",
	TypeEvent:     "EVENT",
	TypeInterrupt: "INTERRUPT",
	TypeDilemma:   "DILEMMA",
}

func (t CardType) String() string {
	if name, ok := cardTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CARD_TYPE_%d", int(t))
}

// Affiliation is a faction tag gating headquarters deployment and crewing.
type Affiliation string

// Skill is a named capability a personnel holds or is granted.
type Skill string

// Species tags a personnel for ability target filters.
type Species string

// Attribute identifies one of the three personnel attributes.
type Attribute int

const (
	AttrIntegrity Attribute = iota
	AttrCunning
	AttrStrength
)

var attributeNames = map[Attribute]string{
	AttrIntegrity: "INTEGRITY",
	AttrCunning:   "CUNNING",
	AttrStrength:  "STRENGTH",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ATTRIBUTE_%d", int(a))
}

// Attributes holds a personnel's three base attribute values.
type Attributes struct {
	Integrity int
	Cunning   int
	Strength  int
}

// Get returns the value for the named attribute.
func (a Attributes) Get(attr Attribute) int {
	switch attr {
	case AttrIntegrity:
		return a.Integrity
	case AttrCunning:
		return a.Cunning
	case AttrStrength:
		return a.Strength
	}
	return 0
}

// StaffingIcon is a role marker a ship requires of its boarding crew.
type StaffingIcon int

const (
	IconNone StaffingIcon = iota
	IconStaff
	IconCommand
)

func (i StaffingIcon) String() string {
	switch i {
	case IconStaff:
		return "STAFF"
	case IconCommand:
		return "COMMAND"
	}
	return "NONE"
}

// PersonnelStatus tracks whether a personnel can act this turn.
type PersonnelStatus int

const (
	StatusUnstopped PersonnelStatus = iota
	StatusStopped
	StatusKilled
)

func (s PersonnelStatus) String() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusKilled:
		return "KILLED"
	}
	return "UNSTOPPED"
}

// Personnel is the payload for TypePersonnel cards. SkillGroups holds
// independent skill bundles; Skills flattens them.
type Personnel struct {
	Attributes  Attributes
	SkillGroups [][]Skill
	Species     []Species
	Icon        StaffingIcon
	Status      PersonnelStatus
}

// Skills returns every native skill across all bundles, duplicates kept
// (each occurrence contributes one unit to requirement pools).
func (p *Personnel) Skills() []Skill {
	var out []Skill
	for _, group := range p.SkillGroups {
		out = append(out, group...)
	}
	return out
}

// Ship is the payload for TypeShip cards. RangeRemaining is consumed by
// movement during a turn and reset to Range when a new turn begins.
type Ship struct {
	Staffing       []StaffingIcon
	Range          int
	RangeRemaining int
	Weapons        int
	Shields        int
}

// MissionType locates a mission for dilemma eligibility and deployment.
type MissionType int

const (
	MissionPlanet MissionType = iota
	MissionSpace
	MissionHeadquarters
)

func (m MissionType) String() string {
	switch m {
	case MissionSpace:
		return "SPACE"
	case MissionHeadquarters:
		return "HEADQUARTERS"
	}
	return "PLANET"
}

// AttributeRequirement is a pooled attribute threshold on a mission or
// dilemma requirement. The pooled total must strictly exceed Value.
type AttributeRequirement struct {
	Attribute Attribute
	Value     int
}

// Mission is the payload for TypeMission cards. Requirements lists
// alternative skill groups; satisfying any one group completes the
// mission. Span contributes to ship movement cost.
type Mission struct {
	Requirements [][]Skill
	Attribute    *AttributeRequirement
	Affiliations []Affiliation
	Type         MissionType
	Quadrant     string
	Span         int
	Score        int
	Completed    bool
}

// Card is one card template or instance. ID is template identity;
// UniqueID is per-instance identity assigned at game setup.
type Card struct {
	ID           string
	UniqueID     string
	Name         string
	Type         CardType
	Unique       bool
	Affiliations []Affiliation
	Cost         int
	Abilities    []Ability

	Personnel *Personnel
	Ship      *Ship
	Mission   *Mission
	Dilemma   *Dilemma
}

// IsUnstoppedPersonnel reports whether the card is a personnel still able
// to act.
func (c *Card) IsUnstoppedPersonnel() bool {
	return c.Type == TypePersonnel && c.Personnel != nil && c.Personnel.Status == StatusUnstopped
}

// HasAffiliation reports whether the card carries the given affiliation.
func (c *Card) HasAffiliation(a Affiliation) bool {
	for _, have := range c.Affiliations {
		if have == a {
			return true
		}
	}
	return false
}

// HasSkill reports whether a personnel natively holds the skill.
func (c *Card) HasSkill(skill Skill) bool {
	if c.Personnel == nil {
		return false
	}
	for _, have := range c.Personnel.Skills() {
		if have == skill {
			return true
		}
	}
	return false
}

// Clone deep-copies the card so instances never alias template state.
func (c *Card) Clone() *Card {
	out := *c
	out.Affiliations = append([]Affiliation(nil), c.Affiliations...)
	out.Abilities = append([]Ability(nil), c.Abilities...)
	for i := range out.Abilities {
		out.Abilities[i] = c.Abilities[i].clone()
	}
	if c.Personnel != nil {
		p := *c.Personnel
		p.SkillGroups = make([][]Skill, len(c.Personnel.SkillGroups))
		for i, group := range c.Personnel.SkillGroups {
			p.SkillGroups[i] = append([]Skill(nil), group...)
		}
		p.Species = append([]Species(nil), c.Personnel.Species...)
		out.Personnel = &p
	}
	if c.Ship != nil {
		s := *c.Ship
		s.Staffing = append([]StaffingIcon(nil), c.Ship.Staffing...)
		out.Ship = &s
	}
	if c.Mission != nil {
		m := *c.Mission
		m.Requirements = make([][]Skill, len(c.Mission.Requirements))
		for i, group := range c.Mission.Requirements {
			m.Requirements[i] = append([]Skill(nil), group...)
		}
		m.Affiliations = append([]Affiliation(nil), c.Mission.Affiliations...)
		if c.Mission.Attribute != nil {
			attr := *c.Mission.Attribute
			m.Attribute = &attr
		}
		out.Mission = &m
	}
	if c.Dilemma != nil {
		d := c.Dilemma.clone()
		out.Dilemma = &d
	}
	return &out
}
