// Package memory provides an in-process AccountRepository for tests and the
// memory storage driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/telepesa/ledger/internal/domain"
)

// AccountStore keeps accounts in maps guarded by one mutex. Every read and
// write copies, so callers never share state with the store.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byNumber map[string]string
}

// NewAccountStore creates an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
		byNumber: make(map[string]string),
	}
}

// Create inserts a new account.
func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	if _, ok := s.byNumber[account.AccountNumber]; ok {
		return domain.ErrDuplicateAccountNumber
	}

	s.accounts[account.ID] = account.Clone()
	s.byNumber[account.AccountNumber] = account.ID
	return nil
}

// GetByID returns a copy of the stored account.
func (s *AccountStore) GetByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a.Clone(), nil
}

// GetByNumber returns a copy of the account with the given number.
func (s *AccountStore) GetByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

// SaveAll writes the batch if every version still matches, all or nothing.
func (s *AccountStore) SaveAll(_ context.Context, accounts []*domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every version first
	for _, a := range accounts {
		stored, ok := s.accounts[a.ID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		if stored.Version != a.Version {
			return fmt.Errorf("%w: account %s at version %d, expected %d",
				domain.ErrConcurrentModification, a.AccountNumber, stored.Version, a.Version)
		}
	}

	// Then write all
	for _, a := range accounts {
		a.Version++
		s.accounts[a.ID] = a.Clone()
	}
	return nil
}

// Snapshot returns copies of all accounts ordered by account number.
func (s *AccountStore) Snapshot() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountNumber < out[j].AccountNumber
	})
	return out
}

// Ping always succeeds.
func (s *AccountStore) Ping(context.Context) error {
	return nil
}
