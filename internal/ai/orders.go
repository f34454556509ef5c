package ai

import (
	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game"
)

// executeOrders runs the attempt-then-move loop a fixed number of rounds:
// attempt every currently completable mission, then reposition ships via
// the four movement strategies.
func (p *Player) executeOrders() {
	for round := 0; round < orderRounds; round++ {
		if p.halted() || p.engine.GameOver() {
			return
		}
		attempted := p.attemptCompletable()
		moved := p.moveShips()
		if !attempted && !moved {
			return
		}
	}
}

// attemptCompletable tries every mission the current crews can finish.
func (p *Player) attemptCompletable() bool {
	did := false
	for idx, md := range p.engine.Missions() {
		if p.halted() || p.engine.GameOver() {
			return did
		}
		m := md.Mission.Mission
		if m.Completed || m.Type == cards.MissionHeadquarters {
			continue
		}
		if p.tryAttempt(idx, md) {
			did = true
		}
	}
	return did
}

// tryAttempt readies the right group for the mission type (beaming crews
// down to a planet surface when needed) and runs the attempt plus its
// dilemma encounter.
func (p *Player) tryAttempt(idx int, md *game.MissionDeployment) bool {
	m := md.Mission.Mission
	switch m.Type {
	case cards.MissionPlanet:
		// Beam any shipboard crew down first so the away team is at
		// full strength.
		for gi := 1; gi < len(md.Groups); gi++ {
			if len(md.Groups[gi].UnstoppedPersonnel()) == 0 {
				continue
			}
			combined := append(append([]*cards.Card(nil),
				md.Groups[0].UnstoppedPersonnel()...),
				md.Groups[gi].UnstoppedPersonnel()...)
			if !p.crewCanComplete(m, combined) {
				continue
			}
			if err := p.act.BeamAllToPlanet(p.id, idx, gi); err != nil {
				p.logger.Debug("beam down rejected", zap.Error(err))
			}
			p.pause()
		}
		if !p.crewCanComplete(m, md.Groups[0].UnstoppedPersonnel()) {
			return false
		}
		return p.runAttempt(idx, 0)
	case cards.MissionSpace:
		for gi := 1; gi < len(md.Groups); gi++ {
			if !p.crewCanComplete(m, md.Groups[gi].UnstoppedPersonnel()) {
				continue
			}
			return p.runAttempt(idx, gi)
		}
	}
	return false
}

// runAttempt starts the attempt and drives the resulting encounter:
// supply the least-valuable personnel whenever a selection is forced,
// otherwise keep advancing until the encounter clears.
func (p *Player) runAttempt(missionIdx, groupIdx int) bool {
	if err := p.act.AttemptMission(p.id, missionIdx, groupIdx); err != nil {
		p.logger.Debug("attempt rejected", zap.Error(err))
		return false
	}
	p.pause()
	for steps := 0; steps < actionCap; steps++ {
		if p.halted() {
			return true
		}
		enc := p.engine.Encounter()
		if enc == nil {
			return true
		}
		if enc.Pending != nil && enc.Pending.RequiresSelection {
			choice := p.leastValuable(enc.Pending.SelectablePersonnel)
			if err := p.act.SelectPersonnelForDilemma(p.id, choice); err != nil {
				p.logger.Warn("selection rejected", zap.Error(err))
				return true
			}
			p.pause()
			continue
		}
		if err := p.act.AdvanceDilemma(p.id); err != nil {
			p.logger.Warn("advance rejected", zap.Error(err))
			return true
		}
		p.pause()
	}
	return true
}

// leastValuable picks the id with the lowest skill-count-plus-attributes
// score.
func (p *Player) leastValuable(uids []string) string {
	best := ""
	bestScore := 0
	for _, uid := range uids {
		card := p.findInPlay(uid)
		if card == nil || card.Personnel == nil {
			continue
		}
		attrs := card.Personnel.Attributes
		score := len(card.Personnel.Skills()) + attrs.Integrity + attrs.Cunning + attrs.Strength
		if best == "" || score < bestScore {
			best, bestScore = uid, score
		}
	}
	if best == "" && len(uids) > 0 {
		best = uids[0]
	}
	return best
}

func (p *Player) findInPlay(uid string) *cards.Card {
	for _, md := range p.engine.Missions() {
		for _, group := range md.Groups {
			for _, c := range group.Cards {
				if c.UniqueID == uid {
					return c
				}
			}
		}
	}
	return nil
}

// moveShips applies the four movement strategies in priority order:
// direct transfer between outposts, fresh crew from headquarters,
// reinforcing survivors, recalling a blocked ship. One move per round.
func (p *Player) moveShips() bool {
	if p.directTransfer() {
		return true
	}
	if p.deployFresh() {
		return true
	}
	if p.reinforce() {
		return true
	}
	return p.recall()
}

type shipPosition struct {
	missionIdx int
	groupIdx   int
	group      *game.CardGroup
	ship       *cards.Card
}

func (p *Player) shipPositions() []shipPosition {
	var out []shipPosition
	for mi, md := range p.engine.Missions() {
		for gi, group := range md.Groups {
			if ship := group.Ship(); ship != nil {
				out = append(out, shipPosition{missionIdx: mi, groupIdx: gi, group: group, ship: ship})
			}
		}
	}
	return out
}

func (p *Player) canReach(pos shipPosition, toIdx int) bool {
	cost, err := p.engine.MoveShipCost(pos.missionIdx, toIdx)
	if err != nil {
		return false
	}
	return pos.ship.Ship.RangeRemaining >= cost
}

// directTransfer moves a crewed ship from one non-headquarters mission
// straight to another it could complete.
func (p *Player) directTransfer() bool {
	hq := p.engine.HeadquartersIndex()
	for _, pos := range p.shipPositions() {
		if pos.missionIdx == hq {
			continue
		}
		crew := pos.group.UnstoppedPersonnel()
		if len(crew) == 0 {
			continue
		}
		for ti, md := range p.engine.Missions() {
			if ti == pos.missionIdx || ti == hq {
				continue
			}
			combined := append(append([]*cards.Card(nil), crew...), p.survivorsAt(ti)...)
			if !p.crewCanComplete(md.Mission.Mission, combined) {
				continue
			}
			if !p.canReach(pos, ti) {
				continue
			}
			if p.move(pos, ti) {
				return true
			}
		}
	}
	return false
}

// deployFresh loads the headquarters garrison onto a docked ship and
// sends it to a completable mission.
func (p *Player) deployFresh() bool {
	hq := p.engine.HeadquartersIndex()
	hqMD := p.engine.Headquarters()
	if hqMD == nil {
		return false
	}
	for _, pos := range p.shipPositions() {
		if pos.missionIdx != hq {
			continue
		}
		garrison := hqMD.Groups[0].UnstoppedPersonnel()
		combined := append(append([]*cards.Card(nil), pos.group.UnstoppedPersonnel()...), garrison...)
		for ti, md := range p.engine.Missions() {
			if ti == hq {
				continue
			}
			withLocals := append(append([]*cards.Card(nil), combined...), p.survivorsAt(ti)...)
			if !p.crewCanComplete(md.Mission.Mission, withLocals) {
				continue
			}
			if !p.canReach(pos, ti) {
				continue
			}
			if len(garrison) > 0 {
				if err := p.act.BeamAllToShip(p.id, hq, pos.groupIdx); err != nil {
					p.logger.Debug("boarding rejected", zap.Error(err))
					continue
				}
				p.pause()
			}
			if p.move(pos, ti) {
				return true
			}
		}
	}
	return false
}

// reinforce sends a crewed ship to a mission that already has survivors,
// when the combined crew can finish the job.
func (p *Player) reinforce() bool {
	hq := p.engine.HeadquartersIndex()
	for ti, md := range p.engine.Missions() {
		if ti == hq || md.Mission.Mission.Completed {
			continue
		}
		survivors := p.survivorsAt(ti)
		if len(survivors) == 0 {
			continue
		}
		for _, pos := range p.shipPositions() {
			if pos.missionIdx == ti {
				continue
			}
			combined := append(append([]*cards.Card(nil), pos.group.UnstoppedPersonnel()...), survivors...)
			if !p.crewCanComplete(md.Mission.Mission, combined) {
				continue
			}
			if !p.canReach(pos, ti) {
				continue
			}
			if p.move(pos, ti) {
				return true
			}
		}
	}
	return false
}

// recall pulls a stranded ship home when its crew can no longer finish
// anything where it is.
func (p *Player) recall() bool {
	hq := p.engine.HeadquartersIndex()
	for _, pos := range p.shipPositions() {
		if pos.missionIdx == hq {
			continue
		}
		useful := false
		for ti, md := range p.engine.Missions() {
			if ti == hq {
				continue
			}
			combined := append(append([]*cards.Card(nil), pos.group.UnstoppedPersonnel()...), p.survivorsAt(ti)...)
			if p.crewCanComplete(md.Mission.Mission, combined) && p.canReach(pos, ti) {
				useful = true
				break
			}
		}
		if useful {
			continue
		}
		if !p.canReach(pos, hq) {
			continue
		}
		if p.move(pos, hq) {
			return true
		}
	}
	return false
}

// survivorsAt returns unstopped personnel already at a mission outside
// ship groups being considered for movement.
func (p *Player) survivorsAt(missionIdx int) []*cards.Card {
	md := p.engine.Missions()[missionIdx]
	var out []*cards.Card
	for _, group := range md.Groups {
		out = append(out, group.UnstoppedPersonnel()...)
	}
	return out
}

func (p *Player) move(pos shipPosition, toIdx int) bool {
	if err := p.act.MoveShip(p.id, pos.ship.UniqueID, toIdx); err != nil {
		p.logger.Debug("move rejected", zap.Error(err))
		return false
	}
	p.pause()
	return true
}
