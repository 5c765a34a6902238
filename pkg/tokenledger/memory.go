package tokenledger

import (
	"context"
	"sync"
)

// MemoryLedger is an in-process Ledger with per-account balances and
// allowances. It backs local development (Ledger.Mock config) and the
// settlement tests.
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[string]int64
	allowances map[string]int64
	pool       int64
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[string]int64),
		allowances: make(map[string]int64),
	}
}

// Credit funds an account balance
func (l *MemoryLedger) Credit(account string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Approve sets the amount an account authorizes the pool to pull
func (l *MemoryLedger) Approve(account string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[account] = amount
}

// Balance returns an account's current balance
func (l *MemoryLedger) Balance(account string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// PoolBalance returns the funds currently held by the pool account
func (l *MemoryLedger) PoolBalance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool
}

// Pull transfers amount from payer into the pool, consuming allowance
func (l *MemoryLedger) Pull(_ context.Context, payer string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[payer] < amount {
		return ErrInsufficientAllowance
	}
	if l.balances[payer] < amount {
		return ErrTransferFailed
	}
	l.allowances[payer] -= amount
	l.balances[payer] -= amount
	l.pool += amount
	return nil
}

// Push transfers amount from the pool to payee
func (l *MemoryLedger) Push(_ context.Context, payee string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool < amount {
		return ErrTransferFailed
	}
	l.pool -= amount
	l.balances[payee] += amount
	return nil
}
