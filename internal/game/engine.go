// Package game implements the per-player rules engine: deck and board
// state, the turn/phase state machine, and the mission-attempt protocol.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
)

const (
	// DefaultHandLimit is the hand size enforced by DiscardExcess.
	DefaultHandLimit = 7
	// DefaultCountersPerTurn is the play-and-draw budget per turn.
	DefaultCountersPerTurn = 7
	// DefaultOpeningHand is the number of cards dealt at setup.
	DefaultOpeningHand = 7
	// WinningScore is the score needed alongside one Planet and one
	// Space completion to win.
	WinningScore = 100
)

// CardGroup is one physical grouping at a mission. Group 0 is the planet
// or headquarters surface and never contains a ship; every later group
// holds exactly one ship plus its boarded personnel.
type CardGroup struct {
	Cards []*cards.Card
}

// Ship returns the group's ship, or nil for a surface group.
func (g *CardGroup) Ship() *cards.Card {
	for _, c := range g.Cards {
		if c.Type == cards.TypeShip {
			return c
		}
	}
	return nil
}

// UnstoppedPersonnel returns the group's personnel still able to act.
func (g *CardGroup) UnstoppedPersonnel() []*cards.Card {
	var out []*cards.Card
	for _, c := range g.Cards {
		if c.IsUnstoppedPersonnel() {
			out = append(out, c)
		}
	}
	return out
}

func (g *CardGroup) remove(uid string) *cards.Card {
	for i, c := range g.Cards {
		if c.UniqueID == uid {
			g.Cards = append(g.Cards[:i], g.Cards[i+1:]...)
			return c
		}
	}
	return nil
}

// MissionDeployment is a mission in play plus everything at it: its card
// groups and the dilemmas placed beneath it.
type MissionDeployment struct {
	Mission  *cards.Card
	Groups   []*CardGroup
	Dilemmas []*cards.Card
}

func (md *MissionDeployment) overcomeCount() int {
	count := 0
	for _, d := range md.Dilemmas {
		if d.Dilemma != nil && d.Dilemma.Overcome {
			count++
		}
	}
	return count
}

// unresolvedBeneath returns dilemmas beneath the mission that are not yet
// overcome; they are re-faced on a later attempt.
func (md *MissionDeployment) unresolvedBeneath() []*cards.Card {
	var out []*cards.Card
	for _, d := range md.Dilemmas {
		if d.Dilemma != nil && !d.Dilemma.Overcome {
			out = append(out, d)
		}
	}
	return out
}

// LogEntry is one line of the append-only action log.
type LogEntry struct {
	Time    time.Time
	Message string
}

// Options tunes per-engine limits.
type Options struct {
	HandLimit       int
	CountersPerTurn int
	OpeningHand     int
}

func (o Options) withDefaults() Options {
	if o.HandLimit <= 0 {
		o.HandLimit = DefaultHandLimit
	}
	if o.CountersPerTurn <= 0 {
		o.CountersPerTurn = DefaultCountersPerTurn
	}
	if o.OpeningHand <= 0 {
		o.OpeningHand = DefaultOpeningHand
	}
	return o
}

// Engine is one player's rules engine. It is single-threaded and
// cooperative: every action is a synchronous, atomic state transition,
// and the orchestrator serializes all calls.
type Engine struct {
	logger  *zap.Logger
	rng     cards.RandomSource
	catalog *cards.Catalog
	opts    Options

	playerID string

	deck    []*cards.Card
	hand    []*cards.Card
	discard []*cards.Card
	removed []*cards.Card

	dilemmaPool  []*cards.Card
	poolOnLoanTo string

	missions      []*MissionDeployment
	hqIndex       int
	uniquesInPlay map[string]bool

	turn     int
	phase    Phase
	counters int

	score           int
	planetCompleted int
	spaceCompleted  int

	encounter   *Encounter
	granted     []abilities.GrantedSkill
	rangeBoosts []abilities.RangeBoost

	usedAbilities map[string]int

	gameOver bool
	victory  bool

	log []LogEntry
}

// NewEngine creates an engine for playerID drawing card templates from
// catalog and randomness from rng.
func NewEngine(playerID string, catalog *cards.Catalog, rng cards.RandomSource, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:        logger.With(zap.String("player", playerID)),
		rng:           rng,
		catalog:       catalog,
		opts:          opts.withDefaults(),
		playerID:      playerID,
		hqIndex:       -1,
		uniquesInPlay: make(map[string]bool),
		usedAbilities: make(map[string]int),
	}
}

// PlayerID returns the owning player's id.
func (e *Engine) PlayerID() string { return e.playerID }

// Turn returns the current turn number.
func (e *Engine) Turn() int { return e.turn }

// CurrentPhase returns the phase in progress.
func (e *Engine) CurrentPhase() Phase { return e.phase }

// Counters returns the unspent play-and-draw budget.
func (e *Engine) Counters() int { return e.counters }

// Score returns the mission score.
func (e *Engine) Score() int { return e.score }

// GameOver reports whether this engine's game has ended.
func (e *Engine) GameOver() bool { return e.gameOver }

// Victory reports whether this engine's player won.
func (e *Engine) Victory() bool { return e.victory }

// MarkDefeated flags the engine game-over without victory; the
// orchestrator mirrors an opponent's win this way.
func (e *Engine) MarkDefeated() {
	e.gameOver = true
	e.victory = false
}

// Missions returns the deployed missions. Callers must not mutate.
func (e *Engine) Missions() []*MissionDeployment { return e.missions }

// Headquarters returns the headquarters deployment.
func (e *Engine) Headquarters() *MissionDeployment {
	if e.hqIndex < 0 || e.hqIndex >= len(e.missions) {
		return nil
	}
	return e.missions[e.hqIndex]
}

// HeadquartersIndex returns the index of the headquarters mission.
func (e *Engine) HeadquartersIndex() int { return e.hqIndex }

// Hand returns the current hand. Callers must not mutate.
func (e *Engine) Hand() []*cards.Card { return e.hand }

// DeckSize returns the number of cards left in the draw deck.
func (e *Engine) DeckSize() int { return len(e.deck) }

// Log returns the append-only action log.
func (e *Engine) Log() []LogEntry { return e.log }

// Encounter returns the active dilemma encounter, or nil.
func (e *Engine) Encounter() *Encounter { return e.encounter }

// Granted returns the active granted-skill records. Callers must not
// mutate.
func (e *Engine) Granted() []abilities.GrantedSkill { return e.granted }

// HandLimit returns the configured hand size limit.
func (e *Engine) HandLimit() int { return e.opts.HandLimit }

func (e *Engine) addLog(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log = append(e.log, LogEntry{Time: time.Now(), Message: msg})
	e.logger.Info(msg)
}

// Setup builds the board from a deck list: missions placed with the
// headquarters located, draw deck shuffled and an opening hand dealt,
// dilemma pool shuffled. It resets any previous state.
func (e *Engine) Setup(deck cards.DeckList) error {
	if len(deck.Missions) == 0 {
		return fmt.Errorf("deck has no missions")
	}

	missions := make([]*MissionDeployment, 0, len(deck.Missions))
	hqIndex := -1
	for i, id := range deck.Missions {
		card, err := e.catalog.Instantiate(id)
		if err != nil {
			return err
		}
		if card.Type != cards.TypeMission {
			return fmt.Errorf("card %s is not a mission", id)
		}
		if card.Mission.Type == cards.MissionHeadquarters && hqIndex == -1 {
			hqIndex = i
		}
		missions = append(missions, &MissionDeployment{
			Mission: card,
			Groups:  []*CardGroup{{}},
		})
	}
	if hqIndex == -1 {
		return fmt.Errorf("deck has no headquarters mission")
	}

	drawDeck := make([]*cards.Card, 0, len(deck.Draw))
	for _, id := range deck.Draw {
		card, err := e.catalog.Instantiate(id)
		if err != nil {
			return err
		}
		switch card.Type {
		case cards.TypeMission, cards.TypeDilemma:
			return fmt.Errorf("card %s cannot be in the draw deck", id)
		}
		drawDeck = append(drawDeck, card)
	}

	pool := make([]*cards.Card, 0, len(deck.Dilemmas))
	for _, id := range deck.Dilemmas {
		card, err := e.catalog.Instantiate(id)
		if err != nil {
			return err
		}
		if card.Type != cards.TypeDilemma {
			return fmt.Errorf("card %s is not a dilemma", id)
		}
		pool = append(pool, card)
	}

	cards.Shuffle(e.rng, drawDeck)
	cards.Shuffle(e.rng, pool)

	opening := e.opts.OpeningHand
	if opening > len(drawDeck) {
		opening = len(drawDeck)
	}

	e.missions = missions
	e.hqIndex = hqIndex
	e.deck = drawDeck[opening:]
	e.hand = append([]*cards.Card(nil), drawDeck[:opening]...)
	e.discard = nil
	e.removed = nil
	e.dilemmaPool = pool
	e.poolOnLoanTo = ""
	e.uniquesInPlay = make(map[string]bool)
	e.turn = 1
	e.phase = PhasePlayAndDraw
	e.counters = e.opts.CountersPerTurn
	e.score = 0
	e.planetCompleted = 0
	e.spaceCompleted = 0
	e.encounter = nil
	e.granted = nil
	e.rangeBoosts = nil
	e.usedAbilities = make(map[string]int)
	e.gameOver = false
	e.victory = false
	e.log = nil

	e.addLog("game set up: %d missions, %d cards in deck, %d in hand, %d dilemmas",
		len(missions), len(e.deck), len(e.hand), len(pool))
	return nil
}

// allInPlay returns every card this player controls on the board.
func (e *Engine) allInPlay() []*cards.Card {
	var out []*cards.Card
	for _, md := range e.missions {
		for _, group := range md.Groups {
			out = append(out, group.Cards...)
		}
	}
	return out
}

// board builds the evaluation context for a card in the given group.
func (e *Engine) board(group *CardGroup, facingDilemma bool) abilities.Board {
	return abilities.Board{
		Present:       group.Cards,
		AllInPlay:     e.allInPlay(),
		FacingDilemma: facingDilemma,
	}
}

func (e *Engine) ownership() abilities.Ownership {
	inPlay := e.allInPlay()
	return abilities.Ownership{Owned: inPlay, Commanded: inPlay}
}

// findInPlay locates a card instance and its group/mission.
func (e *Engine) findInPlay(uid string) (*cards.Card, *MissionDeployment, *CardGroup, int) {
	for _, md := range e.missions {
		for gi, group := range md.Groups {
			for _, c := range group.Cards {
				if c.UniqueID == uid {
					return c, md, group, gi
				}
			}
		}
	}
	return nil, nil, nil, -1
}

func (e *Engine) findInHand(uid string) (int, *cards.Card) {
	for i, c := range e.hand {
		if c.UniqueID == uid {
			return i, c
		}
	}
	return -1, nil
}

// moveToDiscard sends an in-play or in-hand card to the discard pile and
// releases its uniqueness claim.
func (e *Engine) moveToDiscard(card *cards.Card) {
	if card.Unique {
		delete(e.uniquesInPlay, card.ID)
	}
	e.discard = append(e.discard, card)
}

// killPersonnel marks the personnel killed, removes it from its group and
// discards it.
func (e *Engine) killPersonnel(uid string) {
	card, _, group, _ := e.findInPlay(uid)
	if card == nil || card.Personnel == nil {
		return
	}
	card.Personnel.Status = cards.StatusKilled
	group.remove(uid)
	e.moveToDiscard(card)
	e.addLog("%s was killed", card.Name)
}

// stopPersonnel marks the personnel stopped in place.
func (e *Engine) stopPersonnel(uid string) {
	card, _, _, _ := e.findInPlay(uid)
	if card == nil || card.Personnel == nil || card.Personnel.Status == cards.StatusKilled {
		return
	}
	card.Personnel.Status = cards.StatusStopped
	e.addLog("%s was stopped", card.Name)
}

// purgeEphemeral drops granted skills and range boosts whose duration has
// ended.
func (e *Engine) purgeEphemeral(expired func(cards.Duration) bool) {
	kept := e.granted[:0]
	for _, g := range e.granted {
		if !expired(g.Duration) {
			kept = append(kept, g)
		}
	}
	e.granted = kept

	boosts := e.rangeBoosts[:0]
	for _, b := range e.rangeBoosts {
		if !expired(b.Duration) {
			boosts = append(boosts, b)
		}
	}
	e.rangeBoosts = boosts
}
