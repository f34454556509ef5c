// Package mission evaluates whether a crew satisfies a mission's
// alternative requirement groups.
package mission

import (
	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
)

// Crew is the set of unstopped personnel attempting a mission together
// with their evaluation context.
type Crew struct {
	Members []*cards.Card
	Board   abilities.Board
	Granted []abilities.GrantedSkill
}

// skillPool counts one unit per skill occurrence across the crew's
// effective skills.
func (c Crew) skillPool() map[cards.Skill]int {
	pool := make(map[cards.Skill]int)
	for _, member := range c.Members {
		if !member.IsUnstoppedPersonnel() {
			continue
		}
		for _, skill := range abilities.EffectiveSkills(member, c.Board, c.Granted) {
			pool[skill]++
		}
	}
	return pool
}

// attributeTotal sums the crew's effective values for attr.
func (c Crew) attributeTotal(attr cards.Attribute) int {
	total := 0
	for _, member := range c.Members {
		if !member.IsUnstoppedPersonnel() {
			continue
		}
		total += abilities.EffectiveAttribute(member, c.Board, attr)
	}
	return total
}

// groupSatisfied consumes one pool unit per listed skill. Pools are built
// fresh per group; nothing carries across alternatives.
func groupSatisfied(group []cards.Skill, pool map[cards.Skill]int) bool {
	remaining := make(map[cards.Skill]int, len(pool))
	for k, v := range pool {
		remaining[k] = v
	}
	for _, skill := range group {
		if remaining[skill] <= 0 {
			return false
		}
		remaining[skill]--
	}
	return true
}

// CanComplete reports whether any one requirement group is fully
// satisfiable by the crew. A declared attribute threshold must be
// strictly exceeded; equality fails.
func CanComplete(m *cards.Mission, crew Crew) bool {
	if m.Attribute != nil {
		if crew.attributeTotal(m.Attribute.Attribute) <= m.Attribute.Value {
			return false
		}
	}
	if len(m.Requirements) == 0 {
		return m.Type != cards.MissionHeadquarters
	}
	pool := crew.skillPool()
	for _, group := range m.Requirements {
		if groupSatisfied(group, pool) {
			return true
		}
	}
	return false
}

// CheckPooled evaluates a free-standing pooled skill/attribute check (the
// shape shared with dilemma requirements) against the crew.
func CheckPooled(skills []cards.Skill, attr *cards.AttributeRequirement, crew Crew) bool {
	if attr != nil {
		if crew.attributeTotal(attr.Attribute) <= attr.Value {
			return false
		}
	}
	return groupSatisfied(skills, crew.skillPool())
}

// Gap describes the nearest-missing requirement group, for presentation
// layers only.
type Gap struct {
	GroupIndex    int
	MissingSkills []cards.Skill
	AttributeGap  int
}

// NearestGap returns the requirement group closest to satisfaction and
// what it still lacks. Purely diagnostic; correctness never depends on it.
func NearestGap(m *cards.Mission, crew Crew) Gap {
	best := Gap{GroupIndex: -1}
	bestMissing := -1
	pool := crew.skillPool()
	for i, group := range m.Requirements {
		remaining := make(map[cards.Skill]int, len(pool))
		for k, v := range pool {
			remaining[k] = v
		}
		var missing []cards.Skill
		for _, skill := range group {
			if remaining[skill] > 0 {
				remaining[skill]--
			} else {
				missing = append(missing, skill)
			}
		}
		if bestMissing == -1 || len(missing) < bestMissing {
			bestMissing = len(missing)
			best = Gap{GroupIndex: i, MissingSkills: missing}
		}
	}
	if m.Attribute != nil {
		have := crew.attributeTotal(m.Attribute.Attribute)
		if have <= m.Attribute.Value {
			best.AttributeGap = m.Attribute.Value + 1 - have
		}
	}
	return best
}

// Readiness returns the best-satisfied fraction of any one requirement
// group: units met divided by total units, counting a declared attribute
// threshold as one unit. Completed and headquarters missions score -1.
func Readiness(m *cards.Mission, crew Crew) float64 {
	if m.Completed || m.Type == cards.MissionHeadquarters {
		return -1
	}
	pool := crew.skillPool()
	best := 0.0
	for _, group := range m.Requirements {
		remaining := make(map[cards.Skill]int, len(pool))
		for k, v := range pool {
			remaining[k] = v
		}
		met := 0
		total := len(group)
		for _, skill := range group {
			if remaining[skill] > 0 {
				remaining[skill]--
				met++
			}
		}
		if m.Attribute != nil {
			total++
			if crew.attributeTotal(m.Attribute.Attribute) > m.Attribute.Value {
				met++
			}
		}
		if total == 0 {
			continue
		}
		if frac := float64(met) / float64(total); frac > best {
			best = frac
		}
	}
	return best
}
