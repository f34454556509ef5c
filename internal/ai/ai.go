// Package ai is a heuristic strategy that drives one engine through a
// full turn using only the orchestrator's public action interface. It is
// a replaceable strategy module, not a normative rules component.
package ai

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game"
	"github.com/frontierline/frontier-server/internal/game/abilities"
	"github.com/frontierline/frontier-server/internal/game/mission"
)

// Orchestrator is the action surface the planner is allowed to touch. It
// never mutates engine state directly.
type Orchestrator interface {
	Draw(player string) error
	Deploy(player, cardUID string, missionIndex, groupIndex int) error
	DiscardCard(player, cardUID string) error
	NextPhase(player string) error
	MoveShip(player, shipUID string, toIndex int) error
	BeamToShip(player, personUID string, missionIndex, shipGroup int) error
	BeamToPlanet(player, personUID string, missionIndex, shipGroup int) error
	BeamAllToShip(player string, missionIndex, shipGroup int) error
	BeamAllToPlanet(player string, missionIndex, shipGroup int) error
	AttemptMission(player string, missionIndex, groupIndex int) error
	SelectPersonnelForDilemma(player, personUID string) error
	AdvanceDilemma(player string) error
}

const (
	// orderRounds bounds the move/attempt loop per Execute Orders phase.
	orderRounds = 4
	// actionCap is a hard stop against pathological loops in one phase.
	actionCap = 120
)

// Player plans and executes one AI turn at a time.
type Player struct {
	id     string
	engine *game.Engine
	act    Orchestrator
	logger *zap.Logger
	pacing time.Duration
	halt   atomic.Bool
}

// NewPlayer builds a planner for playerID. engine is read-only context;
// all mutation goes through act. pacing inserts a delay between discrete
// actions so a watching human can follow along.
func NewPlayer(playerID string, engine *game.Engine, act Orchestrator, logger *zap.Logger, pacing time.Duration) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		id:     playerID,
		engine: engine,
		act:    act,
		logger: logger.With(zap.String("player", playerID)),
		pacing: pacing,
	}
}

func (p *Player) pause() {
	if p.pacing > 0 {
		time.Sleep(p.pacing)
	}
}

// Stop makes an in-flight turn stand down at its next action boundary.
// The match calls it before rebuilding engine state, so the turn
// goroutine never reads an engine that is being torn down under it.
func (p *Player) Stop() { p.halt.Store(true) }

// Resume re-arms the planner after a Stop. Called under the match lock
// before a new turn goroutine is launched.
func (p *Player) Resume() { p.halt.Store(false) }

func (p *Player) halted() bool { return p.halt.Load() }

// PlayTurn runs a complete turn: play and draw, execute orders, discard
// down to the limit, then hand the turn over. Action failures are logged
// and skipped; they never abort the turn.
func (p *Player) PlayTurn() {
	if p.halted() || p.engine.GameOver() {
		return
	}
	p.playAndDraw()
	p.nextPhase()
	p.executeOrders()
	p.nextPhase()
	p.discardExcess()
	p.nextPhase()
}

func (p *Player) nextPhase() {
	if p.halted() || p.engine.GameOver() {
		return
	}
	if err := p.act.NextPhase(p.id); err != nil {
		p.logger.Debug("phase change rejected", zap.Error(err))
	}
	p.pause()
}

// playAndDraw spends the counter budget on the highest-priority deploys,
// drawing whenever nothing in hand is worth more than a fresh card.
func (p *Player) playAndDraw() {
	for actions := 0; actions < actionCap; actions++ {
		if p.halted() || p.engine.GameOver() || p.engine.Counters() <= 0 {
			return
		}
		best, score := p.bestDeploy()
		if best != nil && score > 0 {
			missionIdx, groupIdx := p.deployTarget(best)
			if err := p.act.Deploy(p.id, best.UniqueID, missionIdx, groupIdx); err == nil {
				p.pause()
				continue
			}
			p.logger.Debug("deploy rejected", zap.String("card", best.Name))
		}
		if p.engine.DeckSize() == 0 {
			return
		}
		if err := p.act.Draw(p.id); err != nil {
			return
		}
		p.pause()
	}
}

// bestDeploy scores every hand card and returns the top deployable one.
func (p *Player) bestDeploy() (*cards.Card, float64) {
	var best *cards.Card
	bestScore := 0.0
	for _, c := range p.engine.Hand() {
		score := p.deployPriority(c)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

// deployPriority weights a hand card by its contribution to the readiest
// reachable mission, scaled by (1 + readiness). Ships are prioritized to
// open a first line of advance; a second ship only matters once the
// first is away from base.
func (p *Player) deployPriority(c *cards.Card) float64 {
	if c.Cost > p.engine.Counters() {
		return 0
	}
	switch c.Type {
	case cards.TypeShip:
		ships := p.shipsInPlay()
		if len(ships) == 0 {
			return 10
		}
		if len(ships) == 1 && p.shipAwayFromBase() {
			return 4
		}
		return 0
	case cards.TypePersonnel:
		best := 0.0
		for _, md := range p.engine.Missions() {
			readiness := p.missionReadiness(md)
			if readiness < 0 {
				continue
			}
			contribution := p.contribution(c, md.Mission.Mission)
			if contribution <= 0 {
				continue
			}
			if score := contribution * (1 + readiness); score > best {
				best = score
			}
		}
		// A warm body is still worth a little even off-plan.
		if best == 0 {
			best = 0.5
		}
		return best
	case cards.TypeEvent:
		return 0.25
	}
	return 0
}

// missionReadiness evaluates a mission against everything the player has
// in play.
func (p *Player) missionReadiness(md *game.MissionDeployment) float64 {
	return mission.Readiness(md.Mission.Mission, p.planningCrew(p.allPersonnel()))
}

// contribution counts the requirement units the card's native skills
// would cover in the mission's best group.
func (p *Player) contribution(c *cards.Card, m *cards.Mission) float64 {
	if c.Personnel == nil {
		return 0
	}
	have := make(map[cards.Skill]int)
	for _, skill := range c.Personnel.Skills() {
		have[skill]++
	}
	best := 0
	for _, group := range m.Requirements {
		remaining := make(map[cards.Skill]int, len(have))
		for k, v := range have {
			remaining[k] = v
		}
		matched := 0
		for _, skill := range group {
			if remaining[skill] > 0 {
				remaining[skill]--
				matched++
			}
		}
		if matched > best {
			best = matched
		}
	}
	return float64(best)
}

func (p *Player) deployTarget(c *cards.Card) (int, int) {
	return p.engine.HeadquartersIndex(), 0
}

func (p *Player) shipsInPlay() []*cards.Card {
	var out []*cards.Card
	for _, md := range p.engine.Missions() {
		for _, group := range md.Groups {
			if ship := group.Ship(); ship != nil {
				out = append(out, ship)
			}
		}
	}
	return out
}

func (p *Player) shipAwayFromBase() bool {
	for i, md := range p.engine.Missions() {
		if i == p.engine.HeadquartersIndex() {
			continue
		}
		for _, group := range md.Groups {
			if group.Ship() != nil {
				return true
			}
		}
	}
	return false
}

func (p *Player) allPersonnel() []*cards.Card {
	var out []*cards.Card
	for _, md := range p.engine.Missions() {
		for _, group := range md.Groups {
			for _, c := range group.Cards {
				if c.IsUnstoppedPersonnel() {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// planningCrew builds a what-if crew context over members.
func (p *Player) planningCrew(members []*cards.Card) mission.Crew {
	return mission.Crew{
		Members: members,
		Board:   abilities.Board{Present: members, AllInPlay: members},
		Granted: p.engine.Granted(),
	}
}

// crewCanComplete is the shared can-the-combined-crew-complete search
// used by attempt and movement decisions.
func (p *Player) crewCanComplete(m *cards.Mission, members []*cards.Card) bool {
	if m.Completed || m.Type == cards.MissionHeadquarters {
		return false
	}
	return mission.CanComplete(m, p.planningCrew(members))
}

// discardExcess sheds the lowest-priority hand card until the hand fits.
func (p *Player) discardExcess() {
	for actions := 0; actions < actionCap; actions++ {
		if p.halted() {
			return
		}
		hand := p.engine.Hand()
		if len(hand) <= p.engine.HandLimit() {
			return
		}
		worst := hand[0]
		worstScore := p.deployPriority(worst)
		for _, c := range hand[1:] {
			if score := p.deployPriority(c); score < worstScore {
				worst, worstScore = c, score
			}
		}
		if err := p.act.DiscardCard(p.id, worst.UniqueID); err != nil {
			return
		}
		p.pause()
	}
}
