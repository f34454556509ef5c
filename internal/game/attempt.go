package game

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/dilemma"
	"github.com/frontierline/frontier-server/internal/game/mission"
)

// Encounter is the state of one mission attempt's dilemma gauntlet. The
// current dilemma's resolution is held in Pending, unapplied, so an
// interrupt can replace it before AdvanceDilemma commits it.
type Encounter struct {
	MissionIndex int
	GroupIndex   int

	Dilemmas []*cards.Card
	Index    int

	DrawCount  int
	CostBudget int
	CostSpent  int

	Faced map[string]bool

	Pending        *dilemma.Resolution
	PendingDilemma *cards.Card
}

// Current returns the dilemma being faced, or nil when exhausted.
func (enc *Encounter) Current() *cards.Card {
	if enc.Index < 0 || enc.Index >= len(enc.Dilemmas) {
		return nil
	}
	return enc.Dilemmas[enc.Index]
}

// attackers returns the attempting group's unstopped personnel.
func (e *Engine) attackers() []*cards.Card {
	md := e.missions[e.encounter.MissionIndex]
	return md.Groups[e.encounter.GroupIndex].UnstoppedPersonnel()
}

// attemptCrew builds the crew evaluation context for the attempt.
func (e *Engine) attemptCrew(facingDilemma bool) mission.Crew {
	md := e.missions[e.encounter.MissionIndex]
	group := md.Groups[e.encounter.GroupIndex]
	return mission.Crew{
		Members: group.UnstoppedPersonnel(),
		Board:   e.board(group, facingDilemma),
		Granted: e.granted,
	}
}

// AttemptBudget computes the draw count and cost budget an attempt on the
// mission/group would have right now: unstopped attackers minus dilemmas
// already overcome beneath the mission, floored at zero.
func (e *Engine) AttemptBudget(missionIndex, groupIndex int) (int, error) {
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return 0, fmt.Errorf("no mission at index %d", missionIndex)
	}
	md := e.missions[missionIndex]
	if groupIndex < 0 || groupIndex >= len(md.Groups) {
		return 0, fmt.Errorf("no group %d at %s", groupIndex, md.Mission.Name)
	}
	count := len(md.Groups[groupIndex].UnstoppedPersonnel()) - md.overcomeCount()
	if count < 0 {
		count = 0
	}
	return count, nil
}

// EligibleDilemmas filters the (possibly borrowed) dilemma pool by
// location compatibility with the mission.
func (e *Engine) EligibleDilemmas(missionIndex int) []*cards.Card {
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return nil
	}
	missionType := e.missions[missionIndex].Mission.Mission.Type
	var out []*cards.Card
	for _, d := range e.dilemmaPool {
		if d.Dilemma.Where.CompatibleWith(missionType) {
			out = append(out, d)
		}
	}
	return out
}

// ReEncounterable returns the dilemmas beneath the mission that were
// never overcome and so may be faced again on a new attempt.
func (e *Engine) ReEncounterable(missionIndex int) []*cards.Card {
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return nil
	}
	return e.missions[missionIndex].unresolvedBeneath()
}

// greedySelect walks eligible in order, taking each dilemma that fits the
// remaining budget, up to drawCount picks, never two of one template.
func greedySelect(eligible []*cards.Card, drawCount, budget int) []*cards.Card {
	var chosen []*cards.Card
	seen := make(map[string]bool)
	spent := 0
	for _, d := range eligible {
		if len(chosen) >= drawCount {
			break
		}
		if seen[d.ID] {
			continue
		}
		if spent+d.Dilemma.Cost > budget {
			continue
		}
		chosen = append(chosen, d)
		seen[d.ID] = true
		spent += d.Dilemma.Cost
	}
	return chosen
}

// validateAttempt checks everything common to starting an attempt.
func (e *Engine) validateAttempt(missionIndex, groupIndex int) (*MissionDeployment, error) {
	if e.gameOver {
		return nil, fmt.Errorf("game is over")
	}
	if e.phase != PhaseExecuteOrders {
		return nil, fmt.Errorf("can only attempt missions during %s", PhaseExecuteOrders)
	}
	if e.encounter != nil {
		return nil, fmt.Errorf("a dilemma encounter is already active")
	}
	if missionIndex < 0 || missionIndex >= len(e.missions) {
		return nil, fmt.Errorf("no mission at index %d", missionIndex)
	}
	md := e.missions[missionIndex]
	m := md.Mission.Mission
	if m.Type == cards.MissionHeadquarters {
		return nil, fmt.Errorf("headquarters cannot be attempted")
	}
	if m.Completed {
		return nil, fmt.Errorf("%s is already completed", md.Mission.Name)
	}
	if groupIndex < 0 || groupIndex >= len(md.Groups) {
		return nil, fmt.Errorf("no group %d at %s", groupIndex, md.Mission.Name)
	}
	if m.Type == cards.MissionPlanet && groupIndex != 0 {
		return nil, fmt.Errorf("planet missions are attempted by the away team on the surface")
	}
	if m.Type == cards.MissionSpace && groupIndex == 0 {
		return nil, fmt.Errorf("space missions are attempted by a ship's crew")
	}
	if len(md.Groups[groupIndex].UnstoppedPersonnel()) == 0 {
		return nil, fmt.Errorf("no unstopped personnel to attempt with")
	}
	return md, nil
}

// CanAttempt runs the full attempt validation without mutating anything,
// so callers can reject a doomed attempt before committing resources to
// it.
func (e *Engine) CanAttempt(missionIndex, groupIndex int) error {
	_, err := e.validateAttempt(missionIndex, groupIndex)
	return err
}

// AttemptMission starts a mission attempt, greedily selecting dilemmas
// from the pool under the cost budget.
func (e *Engine) AttemptMission(missionIndex, groupIndex int) error {
	md, err := e.validateAttempt(missionIndex, groupIndex)
	if err != nil {
		return err
	}
	drawCount, _ := e.AttemptBudget(missionIndex, groupIndex)
	eligible := e.EligibleDilemmas(missionIndex)
	chosen := greedySelect(eligible, drawCount, drawCount)
	return e.startEncounter(md, missionIndex, groupIndex, chosen, md.unresolvedBeneath())
}

// AttemptMissionWith starts an attempt facing an externally chosen set of
// pool dilemmas and re-encountered dilemmas already beneath the mission.
// Selections are validated against the same budget rules the greedy path
// uses.
func (e *Engine) AttemptMissionWith(missionIndex, groupIndex int, poolUIDs, beneathUIDs []string) error {
	md, err := e.validateAttempt(missionIndex, groupIndex)
	if err != nil {
		return err
	}
	drawCount, _ := e.AttemptBudget(missionIndex, groupIndex)

	eligible := e.EligibleDilemmas(missionIndex)
	byUID := make(map[string]*cards.Card, len(eligible))
	for _, d := range eligible {
		byUID[d.UniqueID] = d
	}
	if len(poolUIDs) > drawCount {
		return fmt.Errorf("%d dilemmas selected but draw count is %d", len(poolUIDs), drawCount)
	}
	var chosen []*cards.Card
	seen := make(map[string]bool)
	spent := 0
	for _, uid := range poolUIDs {
		d, ok := byUID[uid]
		if !ok {
			return fmt.Errorf("dilemma %s is not eligible for this attempt", uid)
		}
		if seen[d.ID] {
			return fmt.Errorf("two copies of %s selected", d.Name)
		}
		seen[d.ID] = true
		spent += d.Dilemma.Cost
		chosen = append(chosen, d)
	}
	if spent > drawCount {
		return fmt.Errorf("selection cost %d exceeds budget %d", spent, drawCount)
	}

	reEligible := md.unresolvedBeneath()
	var beneath []*cards.Card
	for _, uid := range beneathUIDs {
		found := false
		for _, d := range reEligible {
			if d.UniqueID == uid {
				beneath = append(beneath, d)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("dilemma %s is not re-encounterable beneath this mission", uid)
		}
	}
	return e.startEncounter(md, missionIndex, groupIndex, chosen, beneath)
}

// startEncounter removes the chosen dilemmas from the pool, queues the
// re-encountered ones first, and resolves the first dilemma into the
// pending slot.
func (e *Engine) startEncounter(md *MissionDeployment, missionIndex, groupIndex int, chosen, beneath []*cards.Card) error {
	spent := 0
	for _, d := range chosen {
		e.removeFromPool(d.UniqueID)
		spent += d.Dilemma.Cost
	}
	drawCount, _ := e.AttemptBudget(missionIndex, groupIndex)

	gauntlet := append(append([]*cards.Card(nil), beneath...), chosen...)
	e.encounter = &Encounter{
		MissionIndex: missionIndex,
		GroupIndex:   groupIndex,
		Dilemmas:     gauntlet,
		Index:        -1,
		DrawCount:    drawCount,
		CostBudget:   drawCount,
		CostSpent:    spent,
		Faced:        make(map[string]bool),
	}
	e.addLog("mission attempt on %s: %d dilemmas to face", md.Mission.Name, len(gauntlet))
	return e.stepEncounter()
}

func (e *Engine) removeFromPool(uid string) {
	for i, d := range e.dilemmaPool {
		if d.UniqueID == uid {
			e.dilemmaPool = append(e.dilemmaPool[:i], e.dilemmaPool[i+1:]...)
			return
		}
	}
}

// stepEncounter advances the encounter cursor and resolves the next
// dilemma into the pending slot, or runs the completion check when the
// gauntlet is exhausted. Duplicate templates are auto-overcome without
// resolution.
func (e *Engine) stepEncounter() error {
	enc := e.encounter
	for {
		enc.Index++
		current := enc.Current()
		if current == nil {
			return e.finishAttempt()
		}
		if enc.Faced[current.ID] {
			current.Dilemma.Overcome = true
			current.Dilemma.FaceUp = true
			e.placeBeneath(current)
			e.addLog("%s auto-overcome: a copy was already faced this attempt", current.Name)
			continue
		}
		enc.Faced[current.ID] = true

		res, err := dilemma.Resolve(current.Dilemma, e.attemptCrew(true), e.rng)
		if err != nil {
			// Malformed rule: treat as trivially overcome rather than
			// wedging the encounter.
			e.addLog("%s could not be resolved (%v); treated as overcome", current.Name, err)
			res = dilemma.Resolution{Overcome: true}
		}
		enc.Pending = &res
		enc.PendingDilemma = current
		e.addLog("facing %s", current.Name)
		return nil
	}
}

// placeBeneath moves a dilemma under the attempt's mission unless it is
// already there.
func (e *Engine) placeBeneath(d *cards.Card) {
	md := e.missions[e.encounter.MissionIndex]
	if !beneathMission(md, d) {
		md.Dilemmas = append(md.Dilemmas, d)
	}
}

// SelectPersonnelForDilemma supplies the chosen personnel for a pending
// selection. The pending resolution is replaced by the single-purpose
// chosen-personnel resolver; commitment still waits for AdvanceDilemma.
func (e *Engine) SelectPersonnelForDilemma(personUID string) error {
	if e.encounter == nil || e.encounter.Pending == nil {
		return fmt.Errorf("no dilemma resolution is pending")
	}
	pending := e.encounter.Pending
	if !pending.RequiresSelection {
		return fmt.Errorf("the pending dilemma does not require a selection")
	}
	valid := false
	for _, uid := range pending.SelectablePersonnel {
		if uid == personUID {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("personnel %s is not a valid selection", personUID)
	}
	res := dilemma.ResolveChosen(personUID)
	e.encounter.Pending = &res
	e.addLog("personnel selected for %s", e.encounter.PendingDilemma.Name)
	return nil
}

// ReplacePendingResolution swaps the pending resolution, the mechanism
// interrupt effects use to prevent and overcome a dilemma.
func (e *Engine) ReplacePendingResolution(res dilemma.Resolution) error {
	if e.encounter == nil || e.encounter.Pending == nil {
		return fmt.Errorf("no dilemma resolution is pending")
	}
	e.encounter.Pending = &res
	return nil
}

// AdvanceDilemma commits the pending resolution, fails the attempt if no
// attacker remains, then steps to the next dilemma or the completion
// check.
func (e *Engine) AdvanceDilemma() error {
	if e.gameOver {
		return fmt.Errorf("game is over")
	}
	enc := e.encounter
	if enc == nil {
		return fmt.Errorf("no dilemma encounter is active")
	}
	if enc.Pending == nil {
		return fmt.Errorf("no dilemma resolution is pending")
	}
	if enc.Pending.RequiresSelection {
		return fmt.Errorf("a personnel selection is required first")
	}

	e.commitPending()

	if len(e.attackers()) == 0 {
		return e.failAttempt("all attackers are stopped")
	}
	return e.stepEncounter()
}

// commitPending applies the held resolution: stop and kill the named
// personnel, then return the dilemma to its pool or place it beneath the
// mission.
func (e *Engine) commitPending() {
	enc := e.encounter
	res := enc.Pending
	current := enc.PendingDilemma
	enc.Pending = nil
	enc.PendingDilemma = nil

	for _, uid := range res.StoppedIDs {
		e.stopPersonnel(uid)
	}
	for _, uid := range res.KilledIDs {
		e.killPersonnel(uid)
	}

	switch {
	case res.Overcome:
		current.Dilemma.Overcome = true
		current.Dilemma.FaceUp = true
		e.placeBeneath(current)
		e.addLog("%s overcome", current.Name)
	case res.ReturnsToPile:
		e.removeBeneath(current)
		e.dilemmaPool = append(e.dilemmaPool, current)
		e.addLog("%s returns to the dilemma pile", current.Name)
	default:
		current.Dilemma.FaceUp = true
		e.placeBeneath(current)
		e.addLog("%s remains beneath the mission", current.Name)
	}
}

func (e *Engine) removeBeneath(d *cards.Card) {
	md := e.missions[e.encounter.MissionIndex]
	for i, existing := range md.Dilemmas {
		if existing.UniqueID == d.UniqueID {
			md.Dilemmas = append(md.Dilemmas[:i], md.Dilemmas[i+1:]...)
			return
		}
	}
}

// failAttempt stops the remaining attackers and auto-overcomes every
// unfaced dilemma: once no attacker remains the rest of the stack is
// skipped and placed beneath the mission.
func (e *Engine) failAttempt(reason string) error {
	enc := e.encounter
	md := e.missions[enc.MissionIndex]
	for _, attacker := range e.attackers() {
		e.stopPersonnel(attacker.UniqueID)
	}
	for i := enc.Index + 1; i < len(enc.Dilemmas); i++ {
		d := enc.Dilemmas[i]
		d.Dilemma.Overcome = true
		d.Dilemma.FaceUp = true
		e.placeBeneath(d)
	}
	e.clearEncounter()
	e.addLog("mission attempt on %s failed: %s", md.Mission.Name, reason)
	return nil
}

// finishAttempt runs the completion check after the gauntlet is
// exhausted.
func (e *Engine) finishAttempt() error {
	enc := e.encounter
	md := e.missions[enc.MissionIndex]
	crew := e.attemptCrew(false)
	if !mission.CanComplete(md.Mission.Mission, crew) {
		return e.failAttempt("requirements not met")
	}

	md.Mission.Mission.Completed = true
	e.score += md.Mission.Mission.Score
	switch md.Mission.Mission.Type {
	case cards.MissionPlanet:
		e.planetCompleted++
	case cards.MissionSpace:
		e.spaceCompleted++
	}
	e.clearEncounter()
	e.addLog("%s completed for %d points (score %d)", md.Mission.Name, md.Mission.Mission.Score, e.score)
	e.checkWin()
	return nil
}

// ClearEncounter abandons the attempt in place. Nothing pending is
// committed: unfaced pool-drawn dilemmas (and the uncommitted pending
// one) go back to the dilemma pool, re-encountered dilemmas stay
// beneath the mission, and the remaining attackers are stopped for the
// turn.
func (e *Engine) ClearEncounter() error {
	if e.encounter == nil {
		return fmt.Errorf("no dilemma encounter is active")
	}
	enc := e.encounter
	md := e.missions[enc.MissionIndex]
	start := enc.Index
	if start < 0 {
		start = 0
	}
	for i := start; i < len(enc.Dilemmas); i++ {
		d := enc.Dilemmas[i]
		if d.Dilemma.Overcome || beneathMission(md, d) {
			continue
		}
		e.dilemmaPool = append(e.dilemmaPool, d)
	}
	for _, attacker := range e.attackers() {
		e.stopPersonnel(attacker.UniqueID)
	}
	e.clearEncounter()
	e.addLog("mission attempt on %s abandoned", md.Mission.Name)
	return nil
}

func beneathMission(md *MissionDeployment, d *cards.Card) bool {
	for _, existing := range md.Dilemmas {
		if existing.UniqueID == d.UniqueID {
			return true
		}
	}
	return false
}

// clearEncounter drops encounter state and purges encounter-scoped
// grants.
func (e *Engine) clearEncounter() {
	e.encounter = nil
	e.purgeEphemeral(func(d cards.Duration) bool {
		return d == cards.DurationEncounter
	})
}
