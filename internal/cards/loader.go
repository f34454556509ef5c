package cards

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// rawCard is the YAML shape of one card definition file entry.
type rawCard struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Type         string       `yaml:"type"`
	Unique       bool         `yaml:"unique"`
	Affiliations []string     `yaml:"affiliations"`
	Cost         int          `yaml:"cost"`
	Personnel    *rawPersonnel `yaml:"personnel"`
	Ship         *rawShip      `yaml:"ship"`
	Mission      *rawMission   `yaml:"mission"`
	Dilemma      *rawDilemma   `yaml:"dilemma"`
	Abilities    []rawAbility  `yaml:"abilities"`
}

type rawPersonnel struct {
	Integrity   int        `yaml:"integrity"`
	Cunning     int        `yaml:"cunning"`
	Strength    int        `yaml:"strength"`
	SkillGroups [][]string `yaml:"skillGroups"`
	Species     []string   `yaml:"species"`
	Icon        string     `yaml:"icon"`
}

type rawShip struct {
	Staffing []string `yaml:"staffing"`
	Range    int      `yaml:"range"`
	Weapons  int      `yaml:"weapons"`
	Shields  int      `yaml:"shields"`
}

type rawMission struct {
	Requirements [][]string `yaml:"requirements"`
	Attribute    string     `yaml:"attribute"`
	Threshold    int        `yaml:"threshold"`
	Affiliations []string   `yaml:"affiliations"`
	Type         string     `yaml:"missionType"`
	Quadrant     string     `yaml:"quadrant"`
	Span         int        `yaml:"span"`
	Score        int        `yaml:"score"`
}

type rawDilemma struct {
	Rule      string     `yaml:"rule"`
	Cost      int        `yaml:"cost"`
	Where     string     `yaml:"where"`
	Skills    []string   `yaml:"skills"`
	Penalty   string     `yaml:"penalty"`
	Stops     []int      `yaml:"stops"`
	KeepCount int        `yaml:"keepCount"`
	Groups    []rawCheck `yaml:"requirements"`
}

type rawCheck struct {
	Single    bool     `yaml:"single"`
	Skills    []string `yaml:"skills"`
	Attribute string   `yaml:"attribute"`
	Threshold int      `yaml:"threshold"`
}

type rawAbility struct {
	ID         string        `yaml:"id"`
	Trigger    string        `yaml:"trigger"`
	Target     *rawTarget    `yaml:"target"`
	Effects    []rawEffect   `yaml:"effects"`
	Cost       *rawCost      `yaml:"cost"`
	Duration   string        `yaml:"duration"`
	UsageLimit int           `yaml:"usageLimit"`
	Condition  *rawCondition `yaml:"condition"`
	Text       string        `yaml:"text"`
}

type rawTarget struct {
	Scope        string   `yaml:"scope"`
	Species      []string `yaml:"species"`
	Affiliations []string `yaml:"affiliations"`
	CardTypes    []string `yaml:"cardTypes"`
	ExcludeSelf  bool     `yaml:"excludeSelf"`
}

type rawEffect struct {
	Kind        string    `yaml:"kind"`
	Attribute   string    `yaml:"attribute"`
	Amount      int       `yaml:"amount"`
	Skill       string    `yaml:"skill"`
	PerMatching *rawCount `yaml:"perMatching"`
}

type rawCount struct {
	Relation string     `yaml:"relation"`
	Filter   *rawTarget `yaml:"filter"`
}

type rawCost struct {
	Kind  string `yaml:"kind"`
	Count int    `yaml:"count"`
}

type rawCondition struct {
	Kind    string `yaml:"kind"`
	Species string `yaml:"species"`
}

type catalogFile struct {
	Cards []rawCard `yaml:"cards"`
}

// Loader reads card definition files from disk, caching parsed catalogs
// per path.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]*Catalog
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Catalog)}
}

// Load parses the YAML card file at path into a Catalog, serving repeated
// loads from cache.
func (l *Loader) Load(path string) (*Catalog, error) {
	l.mu.RLock()
	if cat, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return cat, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card file: %w", err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parse card file %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[path] = cat
	l.mu.Unlock()
	return cat, nil
}

// ParseCatalog decodes YAML card definitions into a Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	templates := make([]*Card, 0, len(file.Cards))
	for _, raw := range file.Cards {
		card, err := raw.toCard()
		if err != nil {
			return nil, err
		}
		templates = append(templates, card)
	}
	return NewCatalog(templates)
}

func (r rawCard) toCard() (*Card, error) {
	cardType, err := parseCardType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", r.ID, err)
	}
	card := &Card{
		ID:     r.ID,
		Name:   r.Name,
		Type:   cardType,
		Unique: r.Unique,
		Cost:   r.Cost,
	}
	for _, a := range r.Affiliations {
		card.Affiliations = append(card.Affiliations, Affiliation(a))
	}
	switch cardType {
	case TypePersonnel:
		if r.Personnel == nil {
			return nil, fmt.Errorf("card %s: personnel payload missing", r.ID)
		}
		card.Personnel = r.Personnel.toPersonnel()
	case TypeShip:
		if r.Ship == nil {
			return nil, fmt.Errorf("card %s: ship payload missing", r.ID)
		}
		card.Ship = r.Ship.toShip()
	case TypeMission:
		if r.Mission == nil {
			return nil, fmt.Errorf("card %s: mission payload missing", r.ID)
		}
		mission, err := r.Mission.toMission()
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", r.ID, err)
		}
		card.Mission = mission
	case TypeDilemma:
		if r.Dilemma == nil {
			return nil, fmt.Errorf("card %s: dilemma payload missing", r.ID)
		}
		dilemma, err := r.Dilemma.toDilemma()
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", r.ID, err)
		}
		card.Dilemma = dilemma
	}
	for _, ra := range r.Abilities {
		ability, err := ra.toAbility()
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", r.ID, err)
		}
		card.Abilities = append(card.Abilities, ability)
	}
	return card, nil
}

func (r rawAbility) toAbility() (Ability, error) {
	trigger, err := parseTrigger(r.Trigger)
	if err != nil {
		return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
	}
	duration, err := parseDuration(r.Duration)
	if err != nil {
		return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
	}
	a := Ability{
		ID:         r.ID,
		Trigger:    trigger,
		Duration:   duration,
		UsageLimit: r.UsageLimit,
		Text:       r.Text,
	}
	if r.Target != nil {
		target, err := r.Target.toFilter()
		if err != nil {
			return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
		}
		a.Target = target
	}
	for _, re := range r.Effects {
		eff, err := re.toEffect()
		if err != nil {
			return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
		}
		a.Effects = append(a.Effects, eff)
	}
	if len(a.Effects) == 0 {
		return Ability{}, fmt.Errorf("ability %s: no effects", r.ID)
	}
	if r.Cost != nil {
		kind, err := parseCostKind(r.Cost.Kind)
		if err != nil {
			return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
		}
		a.Cost = &AbilityCost{Kind: kind, Count: r.Cost.Count}
	}
	if r.Condition != nil {
		kind, err := parseConditionKind(r.Condition.Kind)
		if err != nil {
			return Ability{}, fmt.Errorf("ability %s: %w", r.ID, err)
		}
		a.Condition = &Condition{Kind: kind, Species: Species(r.Condition.Species)}
	}
	return a, nil
}

func (r *rawTarget) toFilter() (TargetFilter, error) {
	scope, err := parseScope(r.Scope)
	if err != nil {
		return TargetFilter{}, err
	}
	f := TargetFilter{Scope: scope, ExcludeSelf: r.ExcludeSelf}
	for _, s := range r.Species {
		f.Species = append(f.Species, Species(s))
	}
	for _, a := range r.Affiliations {
		f.Affiliations = append(f.Affiliations, Affiliation(a))
	}
	for _, t := range r.CardTypes {
		cardType, err := parseCardType(t)
		if err != nil {
			return TargetFilter{}, err
		}
		f.CardTypes = append(f.CardTypes, cardType)
	}
	return f, nil
}

func (r rawEffect) toEffect() (Effect, error) {
	kind, err := parseEffectKind(r.Kind)
	if err != nil {
		return Effect{}, err
	}
	eff := Effect{Kind: kind, Amount: r.Amount, Skill: Skill(r.Skill)}
	if r.Attribute != "" {
		attr, err := parseAttribute(r.Attribute)
		if err != nil {
			return Effect{}, err
		}
		eff.Attribute = attr
	}
	if r.PerMatching != nil {
		relation, err := parseRelation(r.PerMatching.Relation)
		if err != nil {
			return Effect{}, err
		}
		cf := CountFilter{Relation: relation}
		if r.PerMatching.Filter != nil {
			filter, err := r.PerMatching.Filter.toFilter()
			if err != nil {
				return Effect{}, err
			}
			cf.Filter = filter
		}
		eff.PerMatching = &cf
	}
	return eff, nil
}

func (r *rawPersonnel) toPersonnel() *Personnel {
	p := &Personnel{
		Attributes: Attributes{Integrity: r.Integrity, Cunning: r.Cunning, Strength: r.Strength},
		Icon:       parseIcon(r.Icon),
	}
	for _, group := range r.SkillGroups {
		skills := make([]Skill, 0, len(group))
		for _, s := range group {
			skills = append(skills, Skill(s))
		}
		p.SkillGroups = append(p.SkillGroups, skills)
	}
	for _, s := range r.Species {
		p.Species = append(p.Species, Species(s))
	}
	return p
}

func (r *rawShip) toShip() *Ship {
	ship := &Ship{
		Range:          r.Range,
		RangeRemaining: r.Range,
		Weapons:        r.Weapons,
		Shields:        r.Shields,
	}
	for _, icon := range r.Staffing {
		ship.Staffing = append(ship.Staffing, parseIcon(icon))
	}
	return ship
}

func (r *rawMission) toMission() (*Mission, error) {
	missionType, err := parseMissionType(r.Type)
	if err != nil {
		return nil, err
	}
	m := &Mission{
		Type:     missionType,
		Quadrant: r.Quadrant,
		Span:     r.Span,
		Score:    r.Score,
	}
	for _, group := range r.Requirements {
		skills := make([]Skill, 0, len(group))
		for _, s := range group {
			skills = append(skills, Skill(s))
		}
		m.Requirements = append(m.Requirements, skills)
	}
	for _, a := range r.Affiliations {
		m.Affiliations = append(m.Affiliations, Affiliation(a))
	}
	if r.Attribute != "" {
		attr, err := parseAttribute(r.Attribute)
		if err != nil {
			return nil, err
		}
		m.Attribute = &AttributeRequirement{Attribute: attr, Value: r.Threshold}
	}
	return m, nil
}

func (r *rawDilemma) toDilemma() (*Dilemma, error) {
	kind, err := parseRuleKind(r.Rule)
	if err != nil {
		return nil, err
	}
	where, err := parseLocation(r.Where)
	if err != nil {
		return nil, err
	}
	d := &Dilemma{
		Rule:  DilemmaRule{Kind: kind, Stops: r.Stops, KeepCount: r.KeepCount},
		Cost:  r.Cost,
		Where: where,
	}
	for _, s := range r.Skills {
		d.Rule.Skills = append(d.Rule.Skills, Skill(s))
	}
	if r.Penalty != "" {
		penalty, err := parsePenalty(r.Penalty, r.Skills)
		if err != nil {
			return nil, err
		}
		d.Rule.Penalty = penalty
	}
	for _, check := range r.Groups {
		req := DilemmaRequirement{Kind: RequirementPooled}
		if check.Single {
			req.Kind = RequirementSinglePersonnel
		}
		for _, s := range check.Skills {
			req.Skills = append(req.Skills, Skill(s))
		}
		if check.Attribute != "" {
			attr, err := parseAttribute(check.Attribute)
			if err != nil {
				return nil, err
			}
			req.Attribute = &AttributeRequirement{Attribute: attr, Value: check.Threshold}
		}
		d.Rule.Requirements = append(d.Rule.Requirements, req)
	}
	return d, nil
}

func parseCardType(s string) (CardType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MISSION":
		return TypeMission, nil
	case "PERSONNEL":
		return TypePersonnel, nil
	case "SHIP":
		return TypeShip, nil
	case "EVENT":
		return TypeEvent, nil
	case "INTERRUPT":
		return TypeInterrupt, nil
	case "DILEMMA":
		return TypeDilemma, nil
	}
	return 0, fmt.Errorf("unknown card type %q", s)
}

func parseMissionType(s string) (MissionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLANET":
		return MissionPlanet, nil
	case "SPACE":
		return MissionSpace, nil
	case "HEADQUARTERS":
		return MissionHeadquarters, nil
	}
	return 0, fmt.Errorf("unknown mission type %q", s)
}

func parseLocation(s string) (DilemmaLocation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLANET":
		return DilemmaPlanet, nil
	case "SPACE":
		return DilemmaSpace, nil
	case "DUAL":
		return DilemmaDual, nil
	}
	return 0, fmt.Errorf("unknown dilemma location %q", s)
}

func parseRuleKind(s string) (RuleKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CHOOSE_TO_STOP":
		return RuleChooseToStop, nil
	case "UNLESS_CHECK":
		return RuleUnlessCheck, nil
	case "RANDOM_THEN_CHECK":
		return RuleRandomThenCheck, nil
	case "RANDOM_STOP":
		return RuleRandomStop, nil
	case "CREW_LIMIT":
		return RuleCrewLimit, nil
	}
	return 0, fmt.Errorf("unknown dilemma rule %q", s)
}

func parsePenalty(s string, skills []string) (Penalty, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case upper == "RANDOM_KILL":
		return Penalty{Kind: PenaltyRandomKill}, nil
	case strings.HasPrefix(upper, "RANDOM_KILL_WITH_SKILL:"):
		skill := strings.TrimSpace(s[len("RANDOM_KILL_WITH_SKILL:"):])
		return Penalty{Kind: PenaltyRandomKillWithSkill, Skill: Skill(skill)}, nil
	case upper == "STOP_ALL_RETURN_TO_PILE":
		return Penalty{Kind: PenaltyStopAllReturnToPile}, nil
	case upper == "CHOOSE_MATCHING_TO_STOP_ELSE_STOP_ALL":
		penalty := Penalty{Kind: PenaltyChooseMatchingToStopElseStopAll}
		for _, skill := range skills {
			penalty.Skills = append(penalty.Skills, Skill(skill))
		}
		return penalty, nil
	}
	return Penalty{}, fmt.Errorf("unknown penalty %q", s)
}

func parseIcon(s string) StaffingIcon {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STAFF":
		return IconStaff
	case "COMMAND":
		return IconCommand
	}
	return IconNone
}

func parseTrigger(s string) (TriggerType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PASSIVE":
		return TriggerPassive, nil
	case "ORDER":
		return TriggerOrder, nil
	case "INTERLINK":
		return TriggerInterlink, nil
	case "INTERRUPT":
		return TriggerInterrupt, nil
	case "WHILE_FACING_DILEMMA":
		return TriggerWhileFacingDilemma, nil
	case "WHILE_PLAYING":
		return TriggerWhilePlaying, nil
	case "EVENT":
		return TriggerEvent, nil
	}
	return 0, fmt.Errorf("unknown trigger %q", s)
}

func parseScope(s string) (TargetScope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SELF":
		return ScopeSelf, nil
	case "PRESENT":
		return ScopePresent, nil
	case "ALL_IN_PLAY":
		return ScopeAllInPlay, nil
	}
	return 0, fmt.Errorf("unknown target scope %q", s)
}

func parseEffectKind(s string) (EffectKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STAT_MODIFIER":
		return EffectStatModifier, nil
	case "GRANT_SKILL":
		return EffectGrantSkill, nil
	case "COST_MODIFIER":
		return EffectCostModifier, nil
	case "HAND_REFRESH":
		return EffectHandRefresh, nil
	case "BEAM_ALL":
		return EffectBeamAll, nil
	case "RANGE_MODIFIER":
		return EffectRangeModifier, nil
	case "PREVENT_AND_OVERCOME":
		return EffectPreventAndOvercome, nil
	case "RECOVER_FROM_DISCARD":
		return EffectRecoverFromDiscard, nil
	}
	return 0, fmt.Errorf("unknown effect kind %q", s)
}

func parseCostKind(s string) (CostKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DISCARD_FROM_DECK":
		return CostDiscardFromDeck, nil
	case "SACRIFICE_SELF":
		return CostSacrificeSelf, nil
	case "RETURN_TO_HAND":
		return CostReturnToHand, nil
	}
	return 0, fmt.Errorf("unknown cost kind %q", s)
}

func parseDuration(s string) (Duration, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "PERMANENT":
		return DurationPermanent, nil
	case "TURN":
		return DurationTurn, nil
	case "ENCOUNTER":
		return DurationEncounter, nil
	}
	return 0, fmt.Errorf("unknown duration %q", s)
}

func parseConditionKind(s string) (ConditionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SPECIES_PRESENT":
		return ConditionSpeciesPresent, nil
	case "COPY_OVERCOME_ELSEWHERE":
		return ConditionCopyOvercomeElsewhere, nil
	}
	return 0, fmt.Errorf("unknown condition %q", s)
}

func parseRelation(s string) (OwnershipRelation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "OWNED":
		return RelationOwned, nil
	case "COMMANDED":
		return RelationCommanded, nil
	case "COMMANDED_NOT_OWNED":
		return RelationCommandedNotOwned, nil
	}
	return 0, fmt.Errorf("unknown ownership relation %q", s)
}

func parseAttribute(s string) (Attribute, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INTEGRITY":
		return AttrIntegrity, nil
	case "CUNNING":
		return AttrCunning, nil
	case "STRENGTH":
		return AttrStrength, nil
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}
