// Package match orchestrates a human-versus-AI game: two independent
// engines, one active player at a time, dilemma-pool lending between the
// engines, and the human-in-the-loop pause when the AI attempts a
// mission.
package match

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/ai"
	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game"
)

// Event types pushed to the transport layer.
const (
	EventState            = "STATE"
	EventSelectionRequest = "DILEMMA_SELECTION_REQUEST"
	EventGameOver         = "GAME_OVER"
)

// Event is a server-initiated notification. Payload is non-nil only for
// selection requests.
type Event struct {
	Type    string
	Player  string
	Payload any
}

// Options tunes a match.
type Options struct {
	SelectionTimeout time.Duration // human dilemma-selection deadline
	AIPacing         time.Duration // delay between discrete AI actions
	Game             game.Options
}

func (o Options) withDefaults() Options {
	if o.SelectionTimeout <= 0 {
		o.SelectionTimeout = 60 * time.Second
	}
	return o
}

// poolLoan records a dilemma pool lent from the defender's engine to the
// attacker's for the duration of one encounter.
type poolLoan struct {
	borrower string
	lender   string
	// ownPool is the borrower's own pool, parked while the borrowed one
	// is installed.
	ownPool []*cards.Card
}

// Match owns two engines and serializes every mutation through one
// mutex. The AI turn runs on its own goroutine but still goes through
// the same locked action methods, so the engines never race.
type Match struct {
	mu     sync.Mutex
	logger *zap.Logger
	opts   Options

	humanID string
	aiID    string
	engines map[string]*game.Engine
	decks   map[string]cards.DeckList
	active  string

	aiPlayer *ai.Player

	// generation increments on setup/reset; stale AI goroutines and
	// selection futures compare against it and stand down.
	generation int
	sel        *pendingSelection
	loan       *poolLoan
	// aiTurn is closed when the current AI turn goroutine exits.
	aiTurn chan struct{}

	replay *Replay
	events chan Event
}

// New builds a match between humanID and aiID over a shared catalog.
func New(humanID, aiID string, catalog *cards.Catalog, rng cards.RandomSource, logger *zap.Logger, opts Options) *Match {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	m := &Match{
		logger:  logger,
		opts:    opts,
		humanID: humanID,
		aiID:    aiID,
		engines: map[string]*game.Engine{
			humanID: game.NewEngine(humanID, catalog, rng, logger, opts.Game),
			aiID:    game.NewEngine(aiID, catalog, rng, logger, opts.Game),
		},
		decks:  make(map[string]cards.DeckList),
		events: make(chan Event, 64),
	}
	m.aiPlayer = ai.NewPlayer(aiID, m.engines[aiID], m, logger, opts.AIPacing)
	return m
}

// Events is the stream of server-initiated notifications. The transport
// layer drains it; slow consumers drop events rather than block the
// engines.
func (m *Match) Events() <-chan Event { return m.events }

func (m *Match) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("event dropped, consumer too slow", zap.String("type", ev.Type))
	}
}

// HumanID returns the human player's id.
func (m *Match) HumanID() string { return m.humanID }

// AIID returns the AI player's id.
func (m *Match) AIID() string { return m.aiID }

// ActivePlayer returns the id whose actions are currently accepted.
func (m *Match) ActivePlayer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Setup deals both players in and hands the first turn to the human.
// Any pending state from an earlier game is cancelled; an in-flight AI
// turn is stopped and waited out before the engines are rebuilt.
func (m *Match) Setup(humanDeck, aiDeck cards.DeckList) error {
	m.interruptAITurn()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupLocked(humanDeck, aiDeck)
}

// Reset restarts the match with the decks from the last Setup.
func (m *Match) Reset() error {
	m.interruptAITurn()
	m.mu.Lock()
	defer m.mu.Unlock()
	human, ok := m.decks[m.humanID]
	if !ok {
		return fmt.Errorf("match was never set up")
	}
	return m.setupLocked(human, m.decks[m.aiID])
}

// interruptAITurn makes any in-flight AI turn stand down and waits for
// its goroutine to exit. The engines must not be rebuilt while the
// planner can still read them, so callers run this before setupLocked.
func (m *Match) interruptAITurn() {
	m.mu.Lock()
	m.generation++
	if m.sel != nil {
		// Wake the attempt suspended on the selection future so it can
		// see the generation bump and bail out.
		m.sel.resolve(selectionResult{})
		m.sel = nil
	}
	m.aiPlayer.Stop()
	done := m.aiTurn
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (m *Match) setupLocked(humanDeck, aiDeck cards.DeckList) error {
	m.generation++
	if m.sel != nil {
		// Resolve the dangling future so the suspended AI goroutine
		// wakes up, sees the generation bump, and stands down.
		m.sel.resolve(selectionResult{})
		m.sel = nil
	}
	m.loan = nil

	if err := m.engines[m.humanID].Setup(humanDeck); err != nil {
		return fmt.Errorf("setup %s: %w", m.humanID, err)
	}
	if err := m.engines[m.aiID].Setup(aiDeck); err != nil {
		return fmt.Errorf("setup %s: %w", m.aiID, err)
	}
	m.decks[m.humanID] = humanDeck
	m.decks[m.aiID] = aiDeck
	m.active = m.humanID
	m.replay = NewReplay(uuid.NewString())
	m.logger.Info("match started",
		zap.String("human", m.humanID),
		zap.String("ai", m.aiID))
	m.emit(Event{Type: EventState})
	return nil
}

// View renders the board as seen by viewer: the viewer's own zones in
// full, the opponent's hidden zones count-only.
func (m *Match) View(viewer string) (GameView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, ok := m.engines[viewer]
	if !ok {
		return GameView{}, fmt.Errorf("unknown player %s", viewer)
	}
	opp := m.engines[m.opponent(viewer)]
	return GameView{
		You:      eng.View(true),
		Opponent: opp.View(false),
		Active:   m.active,
	}, nil
}

// GameView is the full board from one player's perspective.
type GameView struct {
	You      game.PlayerView `json:"you"`
	Opponent game.PlayerView `json:"opponent"`
	Active   string          `json:"activePlayer"`
}

func (m *Match) opponent(player string) string {
	if player == m.humanID {
		return m.aiID
	}
	return m.humanID
}

// engineFor gates an action: the player must exist and, unless the game
// is being set up, must be the active player.
func (m *Match) engineFor(player string) (*game.Engine, error) {
	eng, ok := m.engines[player]
	if !ok {
		return nil, fmt.Errorf("unknown player %s", player)
	}
	if m.active == "" {
		return nil, fmt.Errorf("match has not been set up")
	}
	if player != m.active {
		return nil, fmt.Errorf("it is not %s's turn", player)
	}
	return eng, nil
}

// afterAction runs the bookkeeping every successful mutation needs:
// restore a lent pool once the encounter clears, mirror a finished game
// onto the opponent's engine, publish the new state.
func (m *Match) afterAction() {
	m.restoreLoanLocked()
	m.mirrorGameOverLocked()
	if m.replay != nil {
		m.replay.Record(GameView{
			You:      m.engines[m.humanID].View(true),
			Opponent: m.engines[m.aiID].View(false),
			Active:   m.active,
		})
	}
	m.emit(Event{Type: EventState})
}

// Replay returns the recording of the current game, or nil before the
// first setup.
func (m *Match) Replay() *Replay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replay
}

// SaveReplay persists the current game's recording under directory.
func (m *Match) SaveReplay(directory string) error {
	m.mu.Lock()
	rec := m.replay
	m.mu.Unlock()
	if rec == nil {
		return fmt.Errorf("no game has been recorded")
	}
	return rec.SaveToFile(directory)
}

func (m *Match) restoreLoanLocked() {
	if m.loan == nil {
		return
	}
	borrower := m.engines[m.loan.borrower]
	if borrower.Encounter() != nil {
		return
	}
	remaining := borrower.SwapPool(m.loan.ownPool)
	if err := m.engines[m.loan.lender].ReturnPool(remaining); err != nil {
		m.logger.Error("pool return failed", zap.Error(err))
	}
	m.loan = nil
}

func (m *Match) mirrorGameOverLocked() {
	humanEng, aiEng := m.engines[m.humanID], m.engines[m.aiID]
	switch {
	case humanEng.GameOver() && !aiEng.GameOver():
		aiEng.MarkDefeated()
		m.emit(Event{Type: EventGameOver, Player: m.winnerLocked()})
	case aiEng.GameOver() && !humanEng.GameOver():
		humanEng.MarkDefeated()
		m.emit(Event{Type: EventGameOver, Player: m.winnerLocked()})
	}
}

func (m *Match) winnerLocked() string {
	if m.engines[m.humanID].Victory() {
		return m.humanID
	}
	if m.engines[m.aiID].Victory() {
		return m.aiID
	}
	return ""
}

// --- action surface (the ai.Orchestrator implementation) ---

// Draw draws one card for the active player.
func (m *Match) Draw(player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.Draw(); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// Deploy plays a card from hand onto a mission.
func (m *Match) Deploy(player, cardUID string, missionIndex, groupIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.Deploy(cardUID, missionIndex, groupIndex); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// DiscardCard discards during the DiscardExcess phase.
func (m *Match) DiscardCard(player, cardUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.DiscardCard(cardUID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// NextPhase advances the active player's phase. A phase transition that
// starts a new turn hands the match to the other player; when that is
// the AI, its turn driver starts on a fresh goroutine.
func (m *Match) NextPhase(player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	newTurn, err := eng.NextPhase()
	if err != nil {
		return err
	}
	if newTurn {
		m.switchActiveLocked()
	}
	m.afterAction()
	return nil
}

func (m *Match) switchActiveLocked() {
	m.active = m.opponent(m.active)
	m.logger.Info("turn passed", zap.String("active", m.active))
	if m.active == m.aiID && !m.engines[m.aiID].GameOver() {
		gen := m.generation
		m.aiPlayer.Resume()
		done := make(chan struct{})
		m.aiTurn = done
		go func() {
			defer close(done)
			m.runAITurn(gen)
		}()
	}
}

func (m *Match) runAITurn(gen int) {
	m.mu.Lock()
	stale := gen != m.generation || m.active != m.aiID || m.engines[m.aiID].GameOver()
	m.mu.Unlock()
	if stale {
		return
	}
	m.aiPlayer.PlayTurn()
}

// MoveShip flies a staffed ship to another mission.
func (m *Match) MoveShip(player, shipUID string, toIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.MoveShip(shipUID, toIndex); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// BeamToShip beams one personnel from the surface group to a ship.
func (m *Match) BeamToShip(player, personUID string, missionIndex, shipGroup int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.BeamToShip(personUID, missionIndex, shipGroup); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// BeamToPlanet beams one personnel from a ship to the surface group.
func (m *Match) BeamToPlanet(player, personUID string, missionIndex, shipGroup int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.BeamToPlanet(personUID, missionIndex, shipGroup); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// BeamAllToShip beams every unstopped surface personnel onto a ship.
func (m *Match) BeamAllToShip(player string, missionIndex, shipGroup int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.BeamAllToShip(missionIndex, shipGroup); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// BeamAllToPlanet beams every unstopped shipboard personnel down.
func (m *Match) BeamAllToPlanet(player string, missionIndex, shipGroup int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.BeamAllToPlanet(missionIndex, shipGroup); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// SelectPersonnelForDilemma answers a pending in-encounter selection.
func (m *Match) SelectPersonnelForDilemma(player, personUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.SelectPersonnelForDilemma(personUID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// AdvanceDilemma commits the pending resolution and steps the encounter.
func (m *Match) AdvanceDilemma(player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.AdvanceDilemma(); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// ClearEncounter abandons the active encounter: unfaced dilemmas go
// back to the pool, the remaining attackers are stopped, and the lent
// pool is returned to the defender.
func (m *Match) ClearEncounter(player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.ClearEncounter(); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// ExecuteOrderAbility fires an order ability on a card in play.
func (m *Match) ExecuteOrderAbility(player, cardUID, abilityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.ExecuteOrderAbility(cardUID, abilityID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// ExecuteInterlinkAbility fires an interlink ability on a card in play.
func (m *Match) ExecuteInterlinkAbility(player, cardUID, abilityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.ExecuteInterlinkAbility(cardUID, abilityID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// PlayInterrupt plays an interrupt card from hand, typically into the
// window while a dilemma resolution is pending.
func (m *Match) PlayInterrupt(player, cardUID, abilityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.PlayInterrupt(cardUID, abilityID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}

// PlayEvent plays an event card from hand.
func (m *Match) PlayEvent(player, cardUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := m.engineFor(player)
	if err != nil {
		return err
	}
	if err := eng.PlayEvent(cardUID); err != nil {
		return err
	}
	m.afterAction()
	return nil
}
