package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game"
)

func newTestMatch(t *testing.T, opts Options) *Match {
	t.Helper()
	return New("human", "ai", cards.DemoCatalog(), cards.NewSeededRNG(1), zaptest.NewLogger(t), opts)
}

func medicDeck() cards.DeckList {
	deck := cards.DemoDeck()
	deck.Draw = []string{
		"per-field-medic", "per-field-medic", "per-field-medic",
		"per-field-medic", "per-field-medic", "per-field-medic",
		"per-field-medic",
	}
	deck.Dilemmas = nil
	return deck
}

func TestActionsRequireSetup(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.Error(t, m.Draw("human"))
	require.Error(t, m.Reset(), "reset without a prior setup must fail")
}

func TestActivePlayerGating(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))

	require.Equal(t, "human", m.ActivePlayer())
	require.Error(t, m.Draw("ai"), "the inactive player must be rejected")
	require.Error(t, m.Draw("ghost"), "unknown players must be rejected")
	require.NoError(t, m.Draw("human"))
}

func TestViewHidesOpponentHand(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))

	view, err := m.View("human")
	require.NoError(t, err)
	require.NotEmpty(t, view.You.Hand, "own hand is revealed")
	require.Empty(t, view.Opponent.Hand, "opponent hand stays hidden")
	require.Equal(t, 7, view.Opponent.HandCount, "hidden zones still expose counts")

	_, err = m.View("ghost")
	require.Error(t, err)
}

func TestHumanAttemptBorrowsAndReturnsDefenderPool(t *testing.T) {
	m := newTestMatch(t, Options{Game: game.Options{CountersPerTurn: 12}})
	humanDeck := medicDeck()
	aiDeck := cards.DemoDeck()
	aiDeck.Dilemmas = []string{"dil-navigation-hazard"}
	require.NoError(t, m.Setup(humanDeck, aiDeck))

	aiEng := m.engines["ai"]
	require.Len(t, aiEng.DilemmaPool(), 1)

	const reliefIdx = 3
	// Snapshot the ids first: Deploy compacts the live hand slice.
	var crew []string
	for _, c := range m.engines["human"].Hand() {
		if c.Type == cards.TypePersonnel {
			crew = append(crew, c.UniqueID)
		}
	}
	require.GreaterOrEqual(t, len(crew), 6)
	for _, uid := range crew[:6] {
		require.NoError(t, m.Deploy("human", uid, reliefIdx, 0))
	}
	require.NoError(t, m.NextPhase("human"))

	require.NoError(t, m.AttemptMission("human", reliefIdx, 0))
	require.NotNil(t, m.engines["human"].Encounter(), "the crew-limit dilemma is pending")
	require.Equal(t, "human", aiEng.PoolOnLoanTo(), "defender pool is on loan during the encounter")
	require.NotNil(t, m.loan)

	require.Error(t, m.AttemptMission("human", reliefIdx, 0),
		"a second attempt must be refused while a pool is on loan")

	// Committing the only dilemma ends the attempt; medics alone cannot
	// complete Relieve Stricken Colony, so the attempt fails and the loan
	// unwinds.
	require.NoError(t, m.AdvanceDilemma("human"))
	require.Nil(t, m.engines["human"].Encounter())
	require.Nil(t, m.loan, "loan must be restored once the encounter clears")
	require.Empty(t, aiEng.PoolOnLoanTo())
	// The dilemma lodged beneath the human's mission, so it does not come
	// home with the pool.
	require.Empty(t, aiEng.DilemmaPool())
	require.Len(t, m.engines["human"].ReEncounterable(reliefIdx), 1)
}

func TestSubmitDilemmaSelectionValidation(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))

	require.Error(t, m.SubmitDilemmaSelection("human", nil, nil),
		"no selection is pending")

	cat := cards.DemoCatalog()
	cheap, err := cat.Instantiate("dil-crew-rotation")
	require.NoError(t, err)
	costly, err := cat.Instantiate("dil-ancient-sentry")
	require.NoError(t, err)

	sel := &pendingSelection{
		done:     make(chan selectionResult, 1),
		defender: "human",
		offeredPool: map[string]*cards.Card{
			cheap.UniqueID:  cheap,
			costly.UniqueID: costly,
		},
		offeredBeneath: map[string]bool{"beneath-1": true},
		drawCount:      2,
		budget:         3,
	}
	m.mu.Lock()
	m.sel = sel
	m.mu.Unlock()

	require.Error(t, m.SubmitDilemmaSelection("ai", nil, nil),
		"only the defender may answer")
	require.Error(t, m.SubmitDilemmaSelection("human", []string{"bogus"}, nil),
		"unoffered dilemmas are rejected")
	require.Error(t, m.SubmitDilemmaSelection("human", []string{cheap.UniqueID, costly.UniqueID}, nil),
		"cost 1+3 exceeds budget 3")
	require.Error(t, m.SubmitDilemmaSelection("human", nil, []string{"bogus"}),
		"unoffered beneath dilemmas are rejected")

	require.NoError(t, m.SubmitDilemmaSelection("human", []string{costly.UniqueID}, []string{"beneath-1"}))
	res := <-sel.done
	require.Equal(t, []string{costly.UniqueID}, res.poolUIDs)
	require.Equal(t, []string{"beneath-1"}, res.beneathUIDs)

	require.Error(t, m.SubmitDilemmaSelection("human", nil, nil),
		"a resolved future accepts nothing further")
}

func TestPendingSelectionResolvesExactlyOnce(t *testing.T) {
	sel := &pendingSelection{done: make(chan selectionResult, 1)}
	first := sel.resolve(selectionResult{poolUIDs: []string{"a"}})
	second := sel.resolve(selectionResult{poolUIDs: []string{"b"}})
	require.True(t, first)
	require.False(t, second)
	res := <-sel.done
	require.Equal(t, []string{"a"}, res.poolUIDs)
}

func TestAutoSelectionGreedyUnderBudget(t *testing.T) {
	cat := cards.DemoCatalog()
	mk := func(id string) *cards.Card {
		d, err := cat.Instantiate(id)
		require.NoError(t, err)
		return d
	}
	saboteur := mk("dil-hidden-saboteur") // cost 2
	sentry := mk("dil-ancient-sentry")    // cost 3
	rotation := mk("dil-crew-rotation")   // cost 1
	dupe := mk("dil-hidden-saboteur")
	beneath := mk("dil-navigation-hazard")

	res := autoSelection([]*cards.Card{saboteur, sentry, rotation, dupe}, []*cards.Card{beneath}, 3)
	require.Equal(t, []string{saboteur.UniqueID, rotation.UniqueID}, res.poolUIDs,
		"greedy takes what fits in pool order and never two of one template")
	require.Equal(t, []string{beneath.UniqueID}, res.beneathUIDs)
}

func TestResetCancelsPendingSelection(t *testing.T) {
	m := newTestMatch(t, Options{SelectionTimeout: time.Hour})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))

	sel := &pendingSelection{done: make(chan selectionResult, 1), defender: "human"}
	m.mu.Lock()
	m.sel = sel
	gen := m.generation
	m.mu.Unlock()

	require.NoError(t, m.Reset())

	select {
	case <-sel.done:
	default:
		t.Fatal("reset must resolve the dangling selection future")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Nil(t, m.sel)
	require.Greater(t, m.generation, gen, "reset bumps the generation")
}

func TestResetStopsInFlightAITurn(t *testing.T) {
	m := newTestMatch(t, Options{AIPacing: 20 * time.Millisecond})
	require.NoError(t, m.Setup(medicDeck(), cards.DemoDeck()))

	// Hand the turn over; the AI turn runs on its own goroutine.
	require.NoError(t, m.NextPhase("human"))
	require.NoError(t, m.NextPhase("human"))
	require.NoError(t, m.NextPhase("human"))
	require.Equal(t, "ai", m.ActivePlayer())
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, m.Reset())

	m.mu.Lock()
	done := m.aiTurn
	m.mu.Unlock()
	require.NotNil(t, done)
	select {
	case <-done:
	default:
		t.Fatal("the AI turn goroutine must exit before the engines are rebuilt")
	}
	require.Equal(t, "human", m.ActivePlayer(), "a fresh game starts with the human")
	require.Equal(t, 1, m.engines["ai"].Turn())
}

func TestAIAttemptPreValidatesBeforeBorrowingPool(t *testing.T) {
	m := newTestMatch(t, Options{SelectionTimeout: time.Hour})
	require.NoError(t, m.Setup(medicDeck(), cards.DemoDeck()))

	m.mu.Lock()
	m.active = "ai"
	m.mu.Unlock()

	// A doomed attempt (headquarters, wrong phase) must be rejected before
	// the defender's pool is borrowed or a selection is requested.
	hq := m.engines["ai"].HeadquartersIndex()
	require.Error(t, m.AttemptMission("ai", hq, 0))

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Nil(t, m.loan, "no pool may be on loan after a rejected attempt")
	require.Nil(t, m.sel, "no selection may be pending after a rejected attempt")
	require.Empty(t, m.engines["human"].PoolOnLoanTo())
	for {
		select {
		case ev := <-m.events:
			require.NotEqual(t, EventSelectionRequest, ev.Type)
			continue
		default:
		}
		break
	}
}

func TestReplayRecordsAndRoundTrips(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))
	require.NoError(t, m.Draw("human"))
	require.NoError(t, m.Draw("human"))

	rec := m.Replay()
	require.NotNil(t, rec)
	require.Equal(t, 2, rec.Len(), "one frame per successful action")

	rec.Start()
	first := rec.Next()
	require.NotNil(t, first)
	require.Equal(t, "human", first.State.Active)
	require.NotNil(t, rec.Next())
	require.Nil(t, rec.Next(), "cursor stops at the end")
	require.NotNil(t, rec.Previous())

	dir := t.TempDir()
	require.NoError(t, m.SaveReplay(dir))
	loaded, err := LoadReplayFromFile(dir, rec.GameID)
	require.NoError(t, err)
	require.Equal(t, rec.GameID, loaded.GameID)
	require.Equal(t, rec.Len(), loaded.Len())
	require.Equal(t, rec.Frames[0].State.Active, loaded.Frames[0].State.Active)
}

func TestEventsCarryStateUpdates(t *testing.T) {
	m := newTestMatch(t, Options{})
	require.NoError(t, m.Setup(cards.DemoDeck(), cards.DemoDeck()))

	drained := 0
	for {
		select {
		case ev := <-m.Events():
			require.Equal(t, EventState, ev.Type)
			drained++
			continue
		default:
		}
		break
	}
	require.Greater(t, drained, 0, "setup publishes a state event")
}
