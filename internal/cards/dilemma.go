package cards

import "fmt"

// DilemmaLocation restricts where a dilemma may be faced.
type DilemmaLocation int

const (
	DilemmaPlanet DilemmaLocation = iota
	DilemmaSpace
	DilemmaDual
)

func (l DilemmaLocation) String() string {
	switch l {
	case DilemmaSpace:
		return "SPACE"
	case DilemmaDual:
		return "DUAL"
	}
	return "PLANET"
}

// CompatibleWith reports whether a dilemma at this location may be faced
// at a mission of the given type.
func (l DilemmaLocation) CompatibleWith(mission MissionType) bool {
	switch l {
	case DilemmaDual:
		return true
	case DilemmaPlanet:
		return mission == MissionPlanet
	case DilemmaSpace:
		return mission == MissionSpace
	}
	return false
}

// RuleKind selects one of the five dilemma resolution templates.
type RuleKind int

const (
	RuleChooseToStop RuleKind = iota
	RuleUnlessCheck
	RuleRandomThenCheck
	RuleRandomStop
	RuleCrewLimit
)

var ruleKindNames = map[RuleKind]string{
	RuleChooseToStop:    "CHOOSE_TO_STOP",
	RuleUnlessCheck:     "UNLESS_CHECK",
	RuleRandomThenCheck: "RANDOM_THEN_CHECK",
	RuleRandomStop:      "RANDOM_STOP",
	RuleCrewLimit:       "CREW_LIMIT",
}

func (k RuleKind) String() string {
	if name, ok := ruleKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RULE_%d", int(k))
}

// PenaltyKind names the fallback applied when a dilemma's check fails.
type PenaltyKind int

const (
	PenaltyRandomKill PenaltyKind = iota
	PenaltyRandomKillWithSkill
	PenaltyStopAllReturnToPile
	PenaltyChooseMatchingToStopElseStopAll
)

// Penalty is the failure branch of a chooseToStop or unlessCheck rule.
// Skill qualifies PenaltyRandomKillWithSkill; Skills qualifies
// PenaltyChooseMatchingToStopElseStopAll.
type Penalty struct {
	Kind   PenaltyKind
	Skill  Skill
	Skills []Skill
}

// RequirementKind distinguishes pooled checks from single-personnel checks.
type RequirementKind int

const (
	// RequirementPooled aggregates the whole crew's skills and attributes.
	RequirementPooled RequirementKind = iota
	// RequirementSinglePersonnel needs one individual to satisfy the
	// skill+attribute combination alone.
	RequirementSinglePersonnel
)

// DilemmaRequirement is one OR'd alternative of an unlessCheck rule.
type DilemmaRequirement struct {
	Kind      RequirementKind
	Skills    []Skill
	Attribute *AttributeRequirement
}

// DilemmaRule is the tagged union driving dilemma resolution. Kind selects
// the template; the other fields qualify it.
type DilemmaRule struct {
	Kind         RuleKind
	Skills       []Skill              // chooseToStop candidate skills
	Penalty      Penalty              // chooseToStop / unlessCheck failure branch
	Requirements []DilemmaRequirement // unlessCheck / randomThenCheck alternatives
	Stops        []int                // randomStop threshold cascade
	KeepCount    int                  // crewLimit survivor count
}

// Dilemma is the payload for TypeDilemma cards. Overcome and FaceUp are
// set once the dilemma has been resolved beneath a mission.
type Dilemma struct {
	Rule     DilemmaRule
	Cost     int
	Where    DilemmaLocation
	Overcome bool
	FaceUp   bool
}

func (d Dilemma) clone() Dilemma {
	out := d
	out.Rule.Skills = append([]Skill(nil), d.Rule.Skills...)
	out.Rule.Penalty.Skills = append([]Skill(nil), d.Rule.Penalty.Skills...)
	out.Rule.Stops = append([]int(nil), d.Rule.Stops...)
	out.Rule.Requirements = make([]DilemmaRequirement, len(d.Rule.Requirements))
	for i, req := range d.Rule.Requirements {
		cp := req
		cp.Skills = append([]Skill(nil), req.Skills...)
		if req.Attribute != nil {
			attr := *req.Attribute
			cp.Attribute = &attr
		}
		out.Rule.Requirements[i] = cp
	}
	return out
}
