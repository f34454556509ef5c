package game

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
)

// quadrantCrossingCost is added to a ship move when the source and
// destination missions sit in different quadrants.
const quadrantCrossingCost = 5

// Draw moves the top card of the deck to hand for one counter.
func (e *Engine) Draw() error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhasePlayAndDraw {
		return fmt.Errorf("can only draw during %s", PhasePlayAndDraw)
	}
	if e.counters <= 0 {
		return fmt.Errorf("no counters remaining")
	}
	if len(e.deck) == 0 {
		return fmt.Errorf("deck is empty")
	}
	card := e.deck[0]
	e.deck = e.deck[1:]
	e.hand = append(e.hand, card)
	e.counters--
	e.addLog("drew a card (%d counters left)", e.counters)
	return nil
}

// Deploy plays a personnel or ship from hand to a mission, spending its
// effective cost in counters. Ships open a new group; personnel join the
// surface group, or a named ship group at space missions.
func (e *Engine) Deploy(cardUID string, missionIndex, groupIndex int) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhasePlayAndDraw {
		return fmt.Errorf("can only deploy during %s", PhasePlayAndDraw)
	}
	handIdx, card := e.findInHand(cardUID)
	if card == nil {
		return fmt.Errorf("card %s is not in hand", cardUID)
	}
	if card.Type != cards.TypePersonnel && card.Type != cards.TypeShip {
		return fmt.Errorf("%s cannot be deployed", card.Name)
	}
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return fmt.Errorf("no mission at index %d", missionIndex)
	}
	md := e.missions[missionIndex]

	hq := e.Headquarters()
	if hq == nil {
		return fmt.Errorf("no headquarters in play")
	}
	affiliated := false
	for _, a := range hq.Mission.Mission.Affiliations {
		if card.HasAffiliation(a) {
			affiliated = true
			break
		}
	}
	if !affiliated {
		return fmt.Errorf("%s does not match the headquarters affiliation", card.Name)
	}
	if card.Unique && e.uniquesInPlay[card.ID] {
		return fmt.Errorf("a copy of unique card %s is already in play", card.Name)
	}

	cost := abilities.EffectiveCost(card, e.allInPlay(), e.ownership())
	if cost > e.counters {
		return fmt.Errorf("cost %d exceeds remaining counters %d", cost, e.counters)
	}

	switch card.Type {
	case cards.TypeShip:
		md.Groups = append(md.Groups, &CardGroup{Cards: []*cards.Card{card}})
	case cards.TypePersonnel:
		target := 0
		if md.Mission.Mission.Type == cards.MissionSpace || groupIndex > 0 {
			if groupIndex <= 0 || groupIndex >= len(md.Groups) {
				return fmt.Errorf("personnel at a space mission need an existing ship group")
			}
			target = groupIndex
		}
		md.Groups[target].Cards = append(md.Groups[target].Cards, card)
	}

	e.hand = append(e.hand[:handIdx], e.hand[handIdx+1:]...)
	if card.Unique {
		e.uniquesInPlay[card.ID] = true
	}
	e.counters -= cost
	e.addLog("deployed %s to %s for %d (%d counters left)", card.Name, md.Mission.Name, cost, e.counters)
	return nil
}

// DiscardCard discards one card from hand during DiscardExcess while the
// hand is above the limit.
func (e *Engine) DiscardCard(cardUID string) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhaseDiscardExcess {
		return fmt.Errorf("can only discard during %s", PhaseDiscardExcess)
	}
	if len(e.hand) <= e.opts.HandLimit {
		return fmt.Errorf("hand size %d is within the limit", len(e.hand))
	}
	idx, card := e.findInHand(cardUID)
	if card == nil {
		return fmt.Errorf("card %s is not in hand", cardUID)
	}
	e.hand = append(e.hand[:idx], e.hand[idx+1:]...)
	e.discard = append(e.discard, card)
	e.addLog("discarded %s (%d in hand)", card.Name, len(e.hand))
	return nil
}

// staffed reports whether the group's unstopped personnel collectively
// satisfy the ship's staffing slots. A command icon fills a staff slot.
func staffed(ship *cards.Card, group *CardGroup) bool {
	var staff, command int
	for _, c := range group.UnstoppedPersonnel() {
		switch c.Personnel.Icon {
		case cards.IconStaff:
			staff++
		case cards.IconCommand:
			command++
		}
	}
	for _, slot := range ship.Ship.Staffing {
		switch slot {
		case cards.IconCommand:
			if command == 0 {
				return false
			}
			command--
		case cards.IconStaff:
			if command > 0 {
				command--
			} else if staff > 0 {
				staff--
			} else {
				return false
			}
		}
	}
	return true
}

// MoveShipCost returns the range a move between two missions consumes.
func (e *Engine) MoveShipCost(fromIndex, toIndex int) (int, error) {
	if fromIndex < 0 || fromIndex >= len(e.missions) || toIndex < 0 || toIndex >= len(e.missions) {
		return 0, fmt.Errorf("invalid mission index")
	}
	from := e.missions[fromIndex].Mission.Mission
	to := e.missions[toIndex].Mission.Mission
	cost := from.Span + to.Span
	if from.Quadrant != to.Quadrant {
		cost += quadrantCrossingCost
	}
	return cost, nil
}

// MoveShip relocates a ship group between missions, consuming range and
// requiring the crew to staff the ship.
func (e *Engine) MoveShip(shipUID string, toIndex int) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhaseExecuteOrders {
		return fmt.Errorf("can only move ships during %s", PhaseExecuteOrders)
	}
	if e.encounter != nil {
		return fmt.Errorf("cannot move ships during a dilemma encounter")
	}
	ship, fromMD, group, groupIdx := e.findInPlay(shipUID)
	if ship == nil || ship.Type != cards.TypeShip {
		return fmt.Errorf("ship %s is not in play", shipUID)
	}
	if toIndex < 0 || toIndex >= len(e.missions) {
		return fmt.Errorf("no mission at index %d", toIndex)
	}
	toMD := e.missions[toIndex]
	if toMD == fromMD {
		return fmt.Errorf("%s is already at %s", ship.Name, toMD.Mission.Name)
	}
	fromIdx := e.missionIndex(fromMD)
	cost, err := e.MoveShipCost(fromIdx, toIndex)
	if err != nil {
		return err
	}
	if ship.Ship.RangeRemaining < cost {
		return fmt.Errorf("%s needs %d range but has %d", ship.Name, cost, ship.Ship.RangeRemaining)
	}
	if !staffed(ship, group) {
		return fmt.Errorf("%s is not staffed for flight", ship.Name)
	}

	fromMD.Groups = append(fromMD.Groups[:groupIdx], fromMD.Groups[groupIdx+1:]...)
	toMD.Groups = append(toMD.Groups, group)
	ship.Ship.RangeRemaining -= cost
	e.addLog("%s moved from %s to %s (range %d left)",
		ship.Name, fromMD.Mission.Name, toMD.Mission.Name, ship.Ship.RangeRemaining)
	return nil
}

func (e *Engine) missionIndex(md *MissionDeployment) int {
	for i, m := range e.missions {
		if m == md {
			return i
		}
	}
	return -1
}

// beamContext validates a beam at a mission and returns its surface and
// the indexed ship group.
func (e *Engine) beamContext(missionIndex, shipGroup int) (*MissionDeployment, *CardGroup, *CardGroup, error) {
	if e.gameOver {
		return nil, nil, nil, fmt.Errorf("game is over")
	}
	if e.phase != PhaseExecuteOrders {
		return nil, nil, nil, fmt.Errorf("can only beam during %s", PhaseExecuteOrders)
	}
	if e.encounter != nil {
		return nil, nil, nil, fmt.Errorf("cannot beam during a dilemma encounter")
	}
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return nil, nil, nil, fmt.Errorf("no mission at index %d", missionIndex)
	}
	md := e.missions[missionIndex]
	if md.Mission.Mission.Type == cards.MissionSpace {
		return nil, nil, nil, fmt.Errorf("there is no surface to beam to at %s", md.Mission.Name)
	}
	if shipGroup <= 0 || shipGroup >= len(md.Groups) {
		return nil, nil, nil, fmt.Errorf("no ship group %d at %s", shipGroup, md.Mission.Name)
	}
	return md, md.Groups[0], md.Groups[shipGroup], nil
}

// BeamToShip moves one unstopped personnel from the surface group onto
// the indexed ship group at the same mission.
func (e *Engine) BeamToShip(personUID string, missionIndex, shipGroup int) error {
	md, surface, ship, err := e.beamContext(missionIndex, shipGroup)
	if err != nil {
		return err
	}
	return e.beamOne(md, surface, ship, personUID)
}

// BeamToPlanet moves one unstopped personnel from a ship group to the
// surface group at the same mission.
func (e *Engine) BeamToPlanet(personUID string, missionIndex, shipGroup int) error {
	md, surface, ship, err := e.beamContext(missionIndex, shipGroup)
	if err != nil {
		return err
	}
	return e.beamOne(md, ship, surface, personUID)
}

func (e *Engine) beamOne(md *MissionDeployment, from, to *CardGroup, personUID string) error {
	var person *cards.Card
	for _, c := range from.Cards {
		if c.UniqueID == personUID {
			person = c
			break
		}
	}
	if person == nil {
		return fmt.Errorf("personnel %s is not in that group", personUID)
	}
	if !person.IsUnstoppedPersonnel() {
		return fmt.Errorf("%s cannot beam", person.Name)
	}
	from.remove(personUID)
	to.Cards = append(to.Cards, person)
	e.addLog("%s beamed at %s", person.Name, md.Mission.Name)
	return nil
}

// BeamAllToShip moves every unstopped personnel from the surface onto the
// indexed ship group.
func (e *Engine) BeamAllToShip(missionIndex, shipGroup int) error {
	md, surface, ship, err := e.beamContext(missionIndex, shipGroup)
	if err != nil {
		return err
	}
	return e.beamAll(md, surface, ship)
}

// BeamAllToPlanet moves every unstopped personnel from a ship group onto
// the surface.
func (e *Engine) BeamAllToPlanet(missionIndex, shipGroup int) error {
	md, surface, ship, err := e.beamContext(missionIndex, shipGroup)
	if err != nil {
		return err
	}
	return e.beamAll(md, ship, surface)
}

func (e *Engine) beamAll(md *MissionDeployment, from, to *CardGroup) error {
	movers := from.UnstoppedPersonnel()
	if len(movers) == 0 {
		return fmt.Errorf("no unstopped personnel to beam")
	}
	for _, person := range movers {
		from.remove(person.UniqueID)
		to.Cards = append(to.Cards, person)
	}
	e.addLog("%d personnel beamed at %s", len(movers), md.Mission.Name)
	return nil
}
