package game

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
)

// Dilemma-pool lending. A pool is an owned value, never an aliased
// reference: the lender gives its pool up entirely and records who holds
// it, and the borrower swaps the borrowed pool in for the duration of one
// encounter.

// LendPool transfers ownership of the dilemma pool to the named borrower.
// The lender holds no pool until ReturnPool.
func (e *Engine) LendPool(to string) ([]*cards.Card, error) {
	if e.poolOnLoanTo != "" {
		return nil, fmt.Errorf("dilemma pool is already on loan to %s", e.poolOnLoanTo)
	}
	pool := e.dilemmaPool
	e.dilemmaPool = nil
	e.poolOnLoanTo = to
	e.addLog("dilemma pool lent to %s", to)
	return pool, nil
}

// ReturnPool restores a previously lent pool to its owner.
func (e *Engine) ReturnPool(pool []*cards.Card) error {
	if e.poolOnLoanTo == "" {
		return fmt.Errorf("dilemma pool is not on loan")
	}
	e.dilemmaPool = pool
	e.poolOnLoanTo = ""
	e.addLog("dilemma pool returned (%d dilemmas)", len(pool))
	return nil
}

// PoolOnLoanTo returns the borrower's id, or empty when the pool is home.
func (e *Engine) PoolOnLoanTo() string { return e.poolOnLoanTo }

// SwapPool installs a pool (typically a borrowed one) and hands back the
// one previously held.
func (e *Engine) SwapPool(pool []*cards.Card) []*cards.Card {
	prev := e.dilemmaPool
	e.dilemmaPool = pool
	return prev
}

// DilemmaPool returns the currently held pool. Callers must not mutate.
func (e *Engine) DilemmaPool() []*cards.Card { return e.dilemmaPool }
