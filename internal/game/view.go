package game

import (
	"time"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
)

// CardView is the serializable face of one card instance.
type CardView struct {
	ID           string   `json:"id"`
	UniqueID     string   `json:"uniqueId"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Unique       bool     `json:"unique,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
	Cost         int      `json:"cost,omitempty"`

	Status    string   `json:"status,omitempty"`
	Integrity int      `json:"integrity,omitempty"`
	Cunning   int      `json:"cunning,omitempty"`
	Strength  int      `json:"strength,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Icon      string   `json:"icon,omitempty"`

	Range          int `json:"range,omitempty"`
	RangeRemaining int `json:"rangeRemaining,omitempty"`

	Overcome bool `json:"overcome,omitempty"`
	FaceUp   bool `json:"faceUp,omitempty"`
}

// GroupView is one card group at a mission.
type GroupView struct {
	Cards []CardView `json:"cards"`
}

// MissionView is one deployed mission with its groups and the dilemmas
// beneath it. Facedown dilemmas expose only a count.
type MissionView struct {
	Card         CardView    `json:"card"`
	MissionType  string      `json:"missionType"`
	Quadrant     string      `json:"quadrant"`
	Span         int         `json:"span"`
	Score        int         `json:"score"`
	Completed    bool        `json:"completed"`
	Groups       []GroupView `json:"groups"`
	Dilemmas     []CardView  `json:"dilemmas"`
	DilemmaCount int         `json:"dilemmaCount"`
}

// EncounterView mirrors the active dilemma encounter.
type EncounterView struct {
	MissionIndex        int      `json:"missionIndex"`
	GroupIndex          int      `json:"groupIndex"`
	DilemmaCount        int      `json:"dilemmaCount"`
	Index               int      `json:"index"`
	DrawCount           int      `json:"drawCount"`
	CostBudget          int      `json:"costBudget"`
	CostSpent           int      `json:"costSpent"`
	CurrentDilemma      string   `json:"currentDilemma,omitempty"`
	RequiresSelection   bool     `json:"requiresSelection"`
	SelectablePersonnel []string `json:"selectablePersonnel,omitempty"`
	PendingOvercome     bool     `json:"pendingOvercome"`
}

// LogView is one rendered log line.
type LogView struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// PlayerView is the serializable snapshot of one engine. Hidden zones
// collapse to counts unless includeHidden is set.
type PlayerView struct {
	PlayerID string `json:"playerId"`

	Turn     int    `json:"turn"`
	Phase    string `json:"phase"`
	Counters int    `json:"counters"`

	Score           int `json:"score"`
	PlanetCompleted int `json:"planetCompleted"`
	SpaceCompleted  int `json:"spaceCompleted"`

	DeckCount    int        `json:"deckCount"`
	HandCount    int        `json:"handCount"`
	Hand         []CardView `json:"hand,omitempty"`
	DiscardCount int        `json:"discardCount"`
	Discard      []CardView `json:"discard,omitempty"`

	DilemmaPoolCount int    `json:"dilemmaPoolCount"`
	PoolOnLoanTo     string `json:"poolOnLoanTo,omitempty"`

	Missions  []MissionView  `json:"missions"`
	Encounter *EncounterView `json:"encounter,omitempty"`

	GameOver bool `json:"gameOver"`
	Victory  bool `json:"victory"`

	Log []LogView `json:"log,omitempty"`
}

func (e *Engine) cardView(c *cards.Card, group *CardGroup) CardView {
	v := CardView{
		ID:       c.ID,
		UniqueID: c.UniqueID,
		Name:     c.Name,
		Type:     c.Type.String(),
		Unique:   c.Unique,
		Cost:     c.Cost,
	}
	for _, a := range c.Affiliations {
		v.Affiliations = append(v.Affiliations, string(a))
	}
	switch {
	case c.Personnel != nil:
		v.Status = c.Personnel.Status.String()
		v.Icon = c.Personnel.Icon.String()
		board := abilities.Board{AllInPlay: e.allInPlay()}
		if group != nil {
			board = e.board(group, false)
		}
		attrs := abilities.EffectiveAttributes(c, board)
		v.Integrity, v.Cunning, v.Strength = attrs.Integrity, attrs.Cunning, attrs.Strength
		for _, skill := range abilities.EffectiveSkills(c, board, e.granted) {
			v.Skills = append(v.Skills, string(skill))
		}
	case c.Ship != nil:
		v.Range = c.Ship.Range
		v.RangeRemaining = c.Ship.RangeRemaining
	case c.Dilemma != nil:
		v.Overcome = c.Dilemma.Overcome
		v.FaceUp = c.Dilemma.FaceUp
	}
	return v
}

// View builds the serializable snapshot. includeHidden reveals the hand,
// discard contents and log, for the owning player's connection.
func (e *Engine) View(includeHidden bool) PlayerView {
	view := PlayerView{
		PlayerID:         e.playerID,
		Turn:             e.turn,
		Phase:            e.phase.String(),
		Counters:         e.counters,
		Score:            e.score,
		PlanetCompleted:  e.planetCompleted,
		SpaceCompleted:   e.spaceCompleted,
		DeckCount:        len(e.deck),
		HandCount:        len(e.hand),
		DiscardCount:     len(e.discard),
		DilemmaPoolCount: len(e.dilemmaPool),
		PoolOnLoanTo:     e.poolOnLoanTo,
		GameOver:         e.gameOver,
		Victory:          e.victory,
	}

	for _, md := range e.missions {
		mv := MissionView{
			Card:         e.cardView(md.Mission, nil),
			MissionType:  md.Mission.Mission.Type.String(),
			Quadrant:     md.Mission.Mission.Quadrant,
			Span:         md.Mission.Mission.Span,
			Score:        md.Mission.Mission.Score,
			Completed:    md.Mission.Mission.Completed,
			DilemmaCount: len(md.Dilemmas),
		}
		for _, group := range md.Groups {
			gv := GroupView{Cards: make([]CardView, 0, len(group.Cards))}
			for _, c := range group.Cards {
				gv.Cards = append(gv.Cards, e.cardView(c, group))
			}
			mv.Groups = append(mv.Groups, gv)
		}
		for _, d := range md.Dilemmas {
			if d.Dilemma.FaceUp {
				mv.Dilemmas = append(mv.Dilemmas, e.cardView(d, nil))
			}
		}
		view.Missions = append(view.Missions, mv)
	}

	if enc := e.encounter; enc != nil {
		ev := EncounterView{
			MissionIndex: enc.MissionIndex,
			GroupIndex:   enc.GroupIndex,
			DilemmaCount: len(enc.Dilemmas),
			Index:        enc.Index,
			DrawCount:    enc.DrawCount,
			CostBudget:   enc.CostBudget,
			CostSpent:    enc.CostSpent,
		}
		if enc.PendingDilemma != nil {
			ev.CurrentDilemma = enc.PendingDilemma.Name
		}
		if enc.Pending != nil {
			ev.RequiresSelection = enc.Pending.RequiresSelection
			ev.SelectablePersonnel = enc.Pending.SelectablePersonnel
			ev.PendingOvercome = enc.Pending.Overcome
		}
		view.Encounter = &ev
	}

	if includeHidden {
		for _, c := range e.hand {
			view.Hand = append(view.Hand, e.cardView(c, nil))
		}
		for _, c := range e.discard {
			view.Discard = append(view.Discard, e.cardView(c, nil))
		}
		for _, entry := range e.log {
			view.Log = append(view.Log, LogView{Time: entry.Time, Message: entry.Message})
		}
	}
	return view
}
