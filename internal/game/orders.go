package game

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
	"github.com/frontierline/frontier-server/internal/game/dilemma"
)

func findAbility(card *cards.Card, abilityID string) *cards.Ability {
	for i := range card.Abilities {
		if card.Abilities[i].ID == abilityID {
			return &card.Abilities[i]
		}
	}
	return nil
}

func (e *Engine) usageKey(cardUID, abilityID string) string {
	return cardUID + "|" + abilityID
}

// checkUsage rejects an ability that has exhausted its per-turn uses.
func (e *Engine) checkUsage(cardUID string, ability *cards.Ability) error {
	if ability.UsageLimit <= 0 {
		return nil
	}
	if e.usedAbilities[e.usageKey(cardUID, ability.ID)] >= ability.UsageLimit {
		return fmt.Errorf("ability already used this turn")
	}
	return nil
}

func (e *Engine) markUsed(cardUID string, ability *cards.Ability) {
	e.usedAbilities[e.usageKey(cardUID, ability.ID)]++
}

// checkCondition validates a declared precondition without mutating
// anything. group is the context group for presence checks.
func (e *Engine) checkCondition(cond *cards.Condition, group *CardGroup) error {
	if cond == nil {
		return nil
	}
	switch cond.Kind {
	case cards.ConditionSpeciesPresent:
		if group == nil {
			return fmt.Errorf("no group to check for %s personnel", cond.Species)
		}
		for _, c := range group.UnstoppedPersonnel() {
			for _, sp := range c.Personnel.Species {
				if sp == cond.Species {
					return nil
				}
			}
		}
		return fmt.Errorf("no unstopped %s personnel present", cond.Species)
	case cards.ConditionCopyOvercomeElsewhere:
		if e.encounter == nil || e.encounter.PendingDilemma == nil {
			return fmt.Errorf("no dilemma is being faced")
		}
		facing := e.encounter.PendingDilemma
		for _, md := range e.missions {
			for _, d := range md.Dilemmas {
				if d.ID == facing.ID && d.UniqueID != facing.UniqueID && d.Dilemma.Overcome {
					return nil
				}
			}
		}
		return fmt.Errorf("no overcome copy of %s elsewhere", facing.Name)
	}
	return fmt.Errorf("unknown condition")
}

// payCost settles an ability's activation price. It validates
// affordability before any mutation so a failed payment leaves state
// unchanged. Returning-to-hand of a card played from hand is handled by
// the caller keeping it there.
func (e *Engine) payCost(holder *cards.Card, cost *cards.AbilityCost, inPlay bool) error {
	if cost == nil {
		return nil
	}
	switch cost.Kind {
	case cards.CostDiscardFromDeck:
		if len(e.deck) < cost.Count {
			return fmt.Errorf("deck has %d cards, cost needs %d", len(e.deck), cost.Count)
		}
		for i := 0; i < cost.Count; i++ {
			top := e.deck[0]
			e.deck = e.deck[1:]
			e.moveToDiscard(top)
		}
		e.addLog("discarded %d from deck to pay an ability cost", cost.Count)
	case cards.CostSacrificeSelf:
		if !inPlay {
			return fmt.Errorf("cannot sacrifice a card that is not in play")
		}
		_, _, group, _ := e.findInPlay(holder.UniqueID)
		if group == nil {
			return fmt.Errorf("%s is not in play", holder.Name)
		}
		group.remove(holder.UniqueID)
		e.moveToDiscard(holder)
		e.addLog("%s was sacrificed", holder.Name)
	case cards.CostReturnToHand:
		if inPlay {
			_, _, group, _ := e.findInPlay(holder.UniqueID)
			if group == nil {
				return fmt.Errorf("%s is not in play", holder.Name)
			}
			group.remove(holder.UniqueID)
			if holder.Unique {
				delete(e.uniquesInPlay, holder.ID)
			}
			e.hand = append(e.hand, holder)
			e.addLog("%s returned to hand", holder.Name)
		}
	}
	return nil
}

// applyEffects runs an ability's effects. group is the holder's group (or
// the attacking group for cards played from hand during an encounter).
func (e *Engine) applyEffects(holder *cards.Card, ability *cards.Ability, group *CardGroup) error {
	for _, eff := range ability.Effects {
		switch eff.Kind {
		case cards.EffectGrantSkill:
			e.granted = append(e.granted, abilities.GrantedSkill{
				Skill:           eff.Skill,
				Filter:          ability.Target,
				Duration:        ability.Duration,
				SourceUniqueID:  holder.UniqueID,
				SourceAbilityID: ability.ID,
			})
			e.addLog("%s grants %s", holder.Name, eff.Skill)

		case cards.EffectRangeModifier:
			if group == nil {
				continue
			}
			for _, c := range group.Cards {
				if c.Type != cards.TypeShip {
					continue
				}
				if !ability.Target.Matches(holder.UniqueID, c) {
					continue
				}
				c.Ship.RangeRemaining += eff.Amount
			}
			e.rangeBoosts = append(e.rangeBoosts, abilities.RangeBoost{
				Amount:          eff.Amount,
				Filter:          ability.Target,
				Duration:        ability.Duration,
				SourceUniqueID:  holder.UniqueID,
				SourceAbilityID: ability.ID,
			})
			e.addLog("%s boosts ship range by %d", holder.Name, eff.Amount)

		case cards.EffectHandRefresh:
			drawn := 0
			for i := 0; i < eff.Amount && len(e.deck) > 0; i++ {
				e.hand = append(e.hand, e.deck[0])
				e.deck = e.deck[1:]
				drawn++
			}
			e.addLog("%s: drew %d cards", holder.Name, drawn)

		case cards.EffectBeamAll:
			if err := e.effectBeamAll(holder, group); err != nil {
				e.addLog("%s: beam-all had no effect: %v", holder.Name, err)
			}

		case cards.EffectPreventAndOvercome:
			if err := e.ReplacePendingResolution(dilemma.Resolution{Overcome: true}); err != nil {
				return err
			}
			e.addLog("%s prevents and overcomes %s", holder.Name, e.encounter.PendingDilemma.Name)

		case cards.EffectRecoverFromDiscard:
			recovered := 0
			kept := e.discard[:0]
			for _, c := range e.discard {
				if recovered < eff.Amount && ability.Target.Matches(holder.UniqueID, c) {
					if c.Personnel != nil {
						c.Personnel.Status = cards.StatusUnstopped
					}
					e.hand = append(e.hand, c)
					recovered++
					continue
				}
				kept = append(kept, c)
			}
			e.discard = kept
			e.addLog("%s: recovered %d cards from discard", holder.Name, recovered)
		}
	}
	return nil
}

// effectBeamAll moves every unstopped personnel between the surface and
// the ship group the holder occupies (or the first ship group when the
// holder is on the surface).
func (e *Engine) effectBeamAll(holder *cards.Card, group *CardGroup) error {
	_, md, _, groupIdx := e.findInPlay(holder.UniqueID)
	if md == nil {
		return fmt.Errorf("%s is not in play", holder.Name)
	}
	if md.Mission.Mission.Type == cards.MissionSpace {
		return fmt.Errorf("no surface at %s", md.Mission.Name)
	}
	var from, to *CardGroup
	if groupIdx == 0 {
		if len(md.Groups) < 2 {
			return fmt.Errorf("no ship group at %s", md.Mission.Name)
		}
		from, to = md.Groups[0], md.Groups[1]
	} else {
		from, to = md.Groups[groupIdx], md.Groups[0]
	}
	return e.beamAll(md, from, to)
}

// ExecuteOrderAbility runs an order-triggered ability on an in-play card
// during Execute Orders. Validation (trigger, timing, condition, usage,
// cost) completes before any effect applies.
func (e *Engine) ExecuteOrderAbility(cardUID, abilityID string) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhaseExecuteOrders {
		return fmt.Errorf("order abilities run during %s", PhaseExecuteOrders)
	}
	if e.encounter != nil {
		return fmt.Errorf("cannot execute orders during a dilemma encounter")
	}
	holder, _, group, _ := e.findInPlay(cardUID)
	if holder == nil {
		return fmt.Errorf("card %s is not in play", cardUID)
	}
	if holder.Personnel != nil && !holder.IsUnstoppedPersonnel() {
		return fmt.Errorf("%s is stopped", holder.Name)
	}
	ability := findAbility(holder, abilityID)
	if ability == nil || ability.Trigger != cards.TriggerOrder {
		return fmt.Errorf("%s has no such order ability", holder.Name)
	}
	if err := e.checkUsage(cardUID, ability); err != nil {
		return err
	}
	if err := e.checkCondition(ability.Condition, group); err != nil {
		return err
	}
	if err := e.payCost(holder, ability.Cost, true); err != nil {
		return err
	}
	e.markUsed(cardUID, ability)
	return e.applyEffects(holder, ability, group)
}

// ExecuteInterlinkAbility runs an interlink ability during an active
// mission attempt; the holder must be part of the attempting group.
func (e *Engine) ExecuteInterlinkAbility(cardUID, abilityID string) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.encounter == nil {
		return fmt.Errorf("interlink abilities run during a mission attempt")
	}
	holder, _, group, _ := e.findInPlay(cardUID)
	if holder == nil {
		return fmt.Errorf("card %s is not in play", cardUID)
	}
	attacking := e.missions[e.encounter.MissionIndex].Groups[e.encounter.GroupIndex]
	if group != attacking {
		return fmt.Errorf("%s is not part of the attempting crew", holder.Name)
	}
	if !holder.IsUnstoppedPersonnel() {
		return fmt.Errorf("%s is stopped", holder.Name)
	}
	ability := findAbility(holder, abilityID)
	if ability == nil || ability.Trigger != cards.TriggerInterlink {
		return fmt.Errorf("%s has no such interlink ability", holder.Name)
	}
	if err := e.checkUsage(cardUID, ability); err != nil {
		return err
	}
	if err := e.checkCondition(ability.Condition, group); err != nil {
		return err
	}
	if err := e.payCost(holder, ability.Cost, true); err != nil {
		return err
	}
	e.markUsed(cardUID, ability)
	return e.applyEffects(holder, ability, group)
}

// PlayInterrupt plays an interrupt card from hand while a dilemma
// resolution is pending. Its effect typically replaces the pending
// resolution. A return-to-hand cost keeps the card in hand; otherwise it
// is discarded after resolving.
func (e *Engine) PlayInterrupt(cardUID, abilityID string) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.encounter == nil || e.encounter.Pending == nil {
		return fmt.Errorf("interrupts play while a dilemma resolution is pending")
	}
	idx, card := e.findInHand(cardUID)
	if card == nil {
		return fmt.Errorf("card %s is not in hand", cardUID)
	}
	if card.Type != cards.TypeInterrupt {
		return fmt.Errorf("%s is not an interrupt", card.Name)
	}
	ability := findAbility(card, abilityID)
	if ability == nil || ability.Trigger != cards.TriggerInterrupt {
		return fmt.Errorf("%s has no such interrupt ability", card.Name)
	}
	attacking := e.missions[e.encounter.MissionIndex].Groups[e.encounter.GroupIndex]
	if err := e.checkUsage(cardUID, ability); err != nil {
		return err
	}
	if err := e.checkCondition(ability.Condition, attacking); err != nil {
		return err
	}
	if err := e.payCost(card, ability.Cost, false); err != nil {
		return err
	}
	e.markUsed(cardUID, ability)
	if err := e.applyEffects(card, ability, attacking); err != nil {
		return err
	}
	if ability.Cost == nil || ability.Cost.Kind != cards.CostReturnToHand {
		e.hand = append(e.hand[:idx], e.hand[idx+1:]...)
		e.discard = append(e.discard, card)
	}
	e.addLog("played interrupt %s", card.Name)
	return nil
}

// PlayEvent plays an event card from hand during PlayAndDraw, spending
// its effective cost in counters; the card is discarded after its effects
// resolve.
func (e *Engine) PlayEvent(cardUID string) error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	if e.phase != PhasePlayAndDraw {
		return fmt.Errorf("events play during %s", PhasePlayAndDraw)
	}
	idx, card := e.findInHand(cardUID)
	if card == nil {
		return fmt.Errorf("card %s is not in hand", cardUID)
	}
	if card.Type != cards.TypeEvent {
		return fmt.Errorf("%s is not an event", card.Name)
	}
	cost := abilities.EffectiveCost(card, e.allInPlay(), e.ownership())
	if cost > e.counters {
		return fmt.Errorf("cost %d exceeds remaining counters %d", cost, e.counters)
	}
	var ability *cards.Ability
	for i := range card.Abilities {
		if card.Abilities[i].Trigger == cards.TriggerEvent {
			ability = &card.Abilities[i]
			break
		}
	}
	if ability == nil {
		return fmt.Errorf("%s has no event ability", card.Name)
	}
	if err := e.checkCondition(ability.Condition, nil); err != nil {
		return err
	}
	// Every effect must be applicable before the card leaves the hand and
	// the counters are spent; a half-played event cannot be rolled back.
	for _, eff := range ability.Effects {
		if eff.Kind == cards.EffectPreventAndOvercome && (e.encounter == nil || e.encounter.Pending == nil) {
			return fmt.Errorf("%s needs a pending dilemma resolution", card.Name)
		}
	}
	e.hand = append(e.hand[:idx], e.hand[idx+1:]...)
	e.counters -= cost
	if err := e.applyEffects(card, ability, nil); err != nil {
		return err
	}
	e.discard = append(e.discard, card)
	e.addLog("played event %s for %d (%d counters left)", card.Name, cost, e.counters)
	return nil
}
