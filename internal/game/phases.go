package game

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
)

// Phase is one stage of a player's turn. Phases are strictly ordered and
// cyclic: PlayAndDraw, ExecuteOrders, DiscardExcess, then a new turn.
type Phase int

const (
	PhasePlayAndDraw Phase = iota
	PhaseExecuteOrders
	PhaseDiscardExcess
)

var phaseNames = map[Phase]string{
	PhasePlayAndDraw:   "PLAY_AND_DRAW",
	PhaseExecuteOrders: "EXECUTE_ORDERS",
	PhaseDiscardExcess: "DISCARD_EXCESS",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// NextPhase advances to the next phase, enforcing exit guards. It reports
// whether the transition started a new turn, which is the orchestrator's
// cue to switch active players.
func (e *Engine) NextPhase() (newTurn bool, err error) {
	if e.gameOver {
		return false, fmt.Errorf("game is over")
	}
	if e.encounter != nil {
		return false, fmt.Errorf("cannot change phase during a dilemma encounter")
	}

	switch e.phase {
	case PhasePlayAndDraw:
		if e.counters > 0 && len(e.deck) > 0 {
			return false, fmt.Errorf("counters must be fully spent before leaving %s", e.phase)
		}
		e.phase = PhaseExecuteOrders
	case PhaseExecuteOrders:
		e.phase = PhaseDiscardExcess
	case PhaseDiscardExcess:
		if len(e.hand) > e.opts.HandLimit {
			return false, fmt.Errorf("hand size %d exceeds limit %d", len(e.hand), e.opts.HandLimit)
		}
		e.beginTurn()
		return true, nil
	}
	e.addLog("phase is now %s", e.phase)
	return false, nil
}

// beginTurn resets the per-turn state: counters, ephemeral grants and
// boosts, stopped personnel, ship ranges and ability usage, then checks
// the lose condition.
func (e *Engine) beginTurn() {
	e.turn++
	e.phase = PhasePlayAndDraw
	e.counters = e.opts.CountersPerTurn
	e.purgeEphemeral(func(d cards.Duration) bool {
		return d == cards.DurationTurn || d == cards.DurationEncounter
	})
	e.usedAbilities = make(map[string]int)

	for _, c := range e.allInPlay() {
		switch {
		case c.Personnel != nil && c.Personnel.Status == cards.StatusStopped:
			c.Personnel.Status = cards.StatusUnstopped
		case c.Ship != nil:
			c.Ship.RangeRemaining = c.Ship.Range
		}
	}

	if len(e.deck) == 0 && len(e.hand) == 0 {
		e.gameOver = true
		e.victory = false
		e.addLog("deck and hand exhausted: defeat")
		return
	}
	e.addLog("turn %d begins", e.turn)
}

// checkWin applies the victory rule: score at or above the winning score
// with at least one completed Planet mission and one completed Space
// mission.
func (e *Engine) checkWin() {
	if e.score >= WinningScore && e.planetCompleted >= 1 && e.spaceCompleted >= 1 {
		e.gameOver = true
		e.victory = true
		e.addLog("victory: score %d with %d planet and %d space missions completed",
			e.score, e.planetCompleted, e.spaceCompleted)
	}
}
