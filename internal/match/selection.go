package match

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/cards"
)

// DilemmaOffer is one selectable dilemma in a selection request.
type DilemmaOffer struct {
	UniqueID string `json:"uniqueId"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Location string `json:"location"`
}

// SelectionRequest is the payload of a DILEMMA_SELECTION_REQUEST event:
// everything the defending human needs to pick and order the dilemmas
// the AI's crew will face.
type SelectionRequest struct {
	MissionIndex    int            `json:"missionIndex"`
	Mission         string         `json:"mission"`
	Eligible        []DilemmaOffer `json:"eligible"`
	ReEncounterable []DilemmaOffer `json:"reEncounterable"`
	DrawCount       int            `json:"drawCount"`
	CostBudget      int            `json:"costBudget"`
	TimeoutSeconds  int            `json:"timeoutSeconds"`
}

type selectionResult struct {
	poolUIDs    []string
	beneathUIDs []string
}

// pendingSelection is a single-resolution future: exactly one of the
// human's submission, the timeout, or a reset may resolve it.
type pendingSelection struct {
	once  sync.Once
	done  chan selectionResult
	timer *time.Timer

	defender       string
	offeredPool    map[string]*cards.Card
	offeredBeneath map[string]bool
	drawCount      int
	budget         int
}

// resolve delivers the result if nothing resolved first. It reports
// whether this call won.
func (s *pendingSelection) resolve(res selectionResult) bool {
	won := false
	s.once.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.done <- res
		won = true
	})
	return won
}

// AttemptMission starts a mission attempt for the active player. The
// defender's dilemma pool is lent to the attacker's engine for the
// encounter. A human attacker faces the pool as the AI ordered it; an AI
// attacker suspends here until the human picks dilemmas or the selection
// deadline passes.
func (m *Match) AttemptMission(player string, missionIndex, groupIndex int) error {
	m.mu.Lock()

	eng, err := m.engineFor(player)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if m.loan != nil {
		m.mu.Unlock()
		return fmt.Errorf("a dilemma pool is already on loan")
	}
	// Reject a doomed attempt before borrowing the defender's pool or
	// asking the defender to pick dilemmas for it.
	if err := eng.CanAttempt(missionIndex, groupIndex); err != nil {
		m.mu.Unlock()
		return err
	}

	defender := m.opponent(player)
	pool, err := m.engines[defender].LendPool(player)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if player == m.humanID {
		// The defending AI orders its obstacles most damaging first.
		pool = m.aiPlayer.ReorderPool(pool)
	}
	own := eng.SwapPool(pool)
	m.loan = &poolLoan{borrower: player, lender: defender, ownPool: own}

	if player == m.humanID {
		err := eng.AttemptMission(missionIndex, groupIndex)
		if err != nil {
			m.restoreLoanLocked()
			m.mu.Unlock()
			return err
		}
		m.afterAction()
		m.mu.Unlock()
		return nil
	}

	// AI attacker: build the offer, publish the selection request, and
	// suspend until the future resolves.
	budget, err := eng.AttemptBudget(missionIndex, groupIndex)
	if err != nil {
		m.restoreLoanLocked()
		m.mu.Unlock()
		return err
	}
	eligible := eng.EligibleDilemmas(missionIndex)
	beneath := eng.ReEncounterable(missionIndex)

	sel := &pendingSelection{
		done:           make(chan selectionResult, 1),
		defender:       defender,
		offeredPool:    make(map[string]*cards.Card, len(eligible)),
		offeredBeneath: make(map[string]bool, len(beneath)),
		drawCount:      budget,
		budget:         budget,
	}
	for _, d := range eligible {
		sel.offeredPool[d.UniqueID] = d
	}
	for _, d := range beneath {
		sel.offeredBeneath[d.UniqueID] = true
	}
	auto := autoSelection(eligible, beneath, budget)
	sel.timer = time.AfterFunc(m.opts.SelectionTimeout, func() {
		if sel.resolve(auto) {
			m.logger.Info("dilemma selection timed out, greedy auto-selection applied",
				zap.String("defender", defender))
		}
	})
	m.sel = sel

	m.emit(Event{
		Type:   EventSelectionRequest,
		Player: defender,
		Payload: SelectionRequest{
			MissionIndex:    missionIndex,
			Mission:         m.engines[player].Missions()[missionIndex].Mission.Name,
			Eligible:        offers(eligible),
			ReEncounterable: offers(beneath),
			DrawCount:       budget,
			CostBudget:      budget,
			TimeoutSeconds:  int(m.opts.SelectionTimeout / time.Second),
		},
	})

	gen := m.generation
	m.mu.Unlock()
	res := <-sel.done
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		// The match was reset while suspended; the new game owns all
		// state now.
		return fmt.Errorf("match was reset during dilemma selection")
	}
	m.sel = nil

	if err := eng.AttemptMissionWith(missionIndex, groupIndex, res.poolUIDs, res.beneathUIDs); err != nil {
		m.restoreLoanLocked()
		return err
	}
	m.afterAction()
	return nil
}

// SubmitDilemmaSelection is the defending human's answer to a selection
// request. It validates the submission against the offered sets before
// it may resolve the pending future; at most one resolution ever wins.
func (m *Match) SubmitDilemmaSelection(player string, poolUIDs, beneathUIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := m.sel
	if sel == nil {
		return fmt.Errorf("no dilemma selection is pending")
	}
	if player != sel.defender {
		return fmt.Errorf("%s is not the defending player", player)
	}
	if len(poolUIDs) > sel.drawCount {
		return fmt.Errorf("%d dilemmas selected but draw count is %d", len(poolUIDs), sel.drawCount)
	}
	seen := make(map[string]bool, len(poolUIDs))
	cost := 0
	for _, uid := range poolUIDs {
		d, ok := sel.offeredPool[uid]
		if !ok {
			return fmt.Errorf("dilemma %s was not offered", uid)
		}
		if seen[d.ID] {
			return fmt.Errorf("two copies of %s selected", d.Name)
		}
		seen[d.ID] = true
		cost += d.Dilemma.Cost
	}
	if cost > sel.budget {
		return fmt.Errorf("selection cost %d exceeds budget %d", cost, sel.budget)
	}
	for _, uid := range beneathUIDs {
		if !sel.offeredBeneath[uid] {
			return fmt.Errorf("dilemma %s is not re-encounterable here", uid)
		}
	}

	if !sel.resolve(selectionResult{poolUIDs: poolUIDs, beneathUIDs: beneathUIDs}) {
		return fmt.Errorf("the selection was already resolved")
	}
	return nil
}

// autoSelection is the deterministic fallback used when the selection
// deadline fires: greedy by cost in pool order, plus every
// re-encounterable dilemma.
func autoSelection(eligible, beneath []*cards.Card, budget int) selectionResult {
	var res selectionResult
	seen := make(map[string]bool)
	spent := 0
	for _, d := range eligible {
		if len(res.poolUIDs) >= budget {
			break
		}
		if seen[d.ID] || spent+d.Dilemma.Cost > budget {
			continue
		}
		seen[d.ID] = true
		spent += d.Dilemma.Cost
		res.poolUIDs = append(res.poolUIDs, d.UniqueID)
	}
	for _, d := range beneath {
		res.beneathUIDs = append(res.beneathUIDs, d.UniqueID)
	}
	return res
}

func offers(ds []*cards.Card) []DilemmaOffer {
	out := make([]DilemmaOffer, 0, len(ds))
	for _, d := range ds {
		out = append(out, DilemmaOffer{
			UniqueID: d.UniqueID,
			ID:       d.ID,
			Name:     d.Name,
			Cost:     d.Dilemma.Cost,
			Location: d.Dilemma.Where.String(),
		})
	}
	return out
}
