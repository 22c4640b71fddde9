package usecase

import (
	"context"
	"errors"

	"github.com/telepesa/ledger/internal/domain"
)

// ErrUnitOfWorkClosed is returned when a committed or discarded unit is reused.
var ErrUnitOfWorkClosed = errors.New("unit of work already closed")

// UnitOfWork groups account mutations that must be committed together.
// Rolling back means discarding the tracked copies; nothing is written
// until Commit.
type UnitOfWork struct {
	repo    AccountRepository
	tracked []*domain.Account
	seen    map[string]struct{}
	closed  bool
}

// NewUnitOfWork creates an empty unit of work over repo.
func NewUnitOfWork(repo AccountRepository) *UnitOfWork {
	return &UnitOfWork{
		repo: repo,
		seen: make(map[string]struct{}),
	}
}

// Track registers an account to be written on Commit. Tracking the same
// account twice is a no-op.
func (u *UnitOfWork) Track(accounts ...*domain.Account) error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}

	for _, a := range accounts {
		if _, ok := u.seen[a.ID]; ok {
			continue
		}
		u.seen[a.ID] = struct{}{}
		u.tracked = append(u.tracked, a)
	}

	return nil
}

// Tracked returns the registered accounts in registration order.
func (u *UnitOfWork) Tracked() []*domain.Account {
	return u.tracked
}

// Commit validates every tracked account and writes them in one SaveAll.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.closed = true

	if len(u.tracked) == 0 {
		return nil
	}

	for _, a := range u.tracked {
		if err := a.ValidateInvariants(); err != nil {
			return err
		}
	}

	return u.repo.SaveAll(ctx, u.tracked)
}

// Discard drops the tracked mutations. Safe to call after Commit.
func (u *UnitOfWork) Discard() {
	u.closed = true
	u.tracked = nil
}
