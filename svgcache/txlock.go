// Package svgcache shares built icons between requesters,
// and serializes the mutations of shared render trees.
package svgcache

import (
	"errors"
	"sync"
)

// ErrNotInTransaction is returned by End when no transaction
// is in progress on the target.
var ErrNotInTransaction = errors.New("svgcache: no transaction in progress")

// TxLock allows at most one mutating transaction at a time,
// whatever its target. Readers run concurrently with each other,
// but never during a transaction.
// Transactions are not reentrant: calling Begin or Read from inside
// a transaction on the same lock blocks forever.
// Targets are compared with ==, and are typically pointers.
type TxLock struct {
	tx sync.RWMutex // write locked from Begin to End

	mu     sync.Mutex // guards target
	target any
	active bool
}

// Begin blocks until no other transaction is in progress, then
// starts a transaction on target.
func (l *TxLock) Begin(target any) {
	l.tx.Lock()
	l.mu.Lock()
	l.target, l.active = target, true
	l.mu.Unlock()
}

// End terminates the transaction started on target.
func (l *TxLock) End(target any) error {
	l.mu.Lock()
	if !l.active || l.target != target {
		l.mu.Unlock()
		return ErrNotInTransaction
	}
	l.target, l.active = nil, false
	l.mu.Unlock()
	l.tx.Unlock()
	return nil
}

// Read runs fn while no transaction is in progress.
func (l *TxLock) Read(fn func()) {
	l.tx.RLock()
	defer l.tx.RUnlock()
	fn()
}

// InTransaction reports whether a transaction is in progress on target.
func (l *TxLock) InTransaction(target any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active && l.target == target
}

// Do runs fn inside a transaction on target. When exec is not nil,
// fn is marshalled onto it, for surfaces bound to one thread.
func (l *TxLock) Do(target any, fn func() error, exec Executor) error {
	l.Begin(target)
	defer l.End(target)
	if exec == nil {
		return fn()
	}
	return exec.Run(fn)
}
