// Package memory provides an in-memory Store implementation. It is safe
// for concurrent use and backs tests and CLI dry runs; data is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kayuse/usekudibackend/internal/domain"
	"github.com/kayuse/usekudibackend/internal/store"
)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*domain.Session // keyed by identifier
	files        map[string]*domain.SessionFile
	accounts     map[string]*domain.SessionAccount
	transactions map[string]*domain.SessionTransaction
	txOrder      []string // insertion order, ties broken by it on sort
	categories   []*domain.Category
	insights     map[string][]*domain.Insight
	swots        map[string][]*domain.SwotEntry
	potentials   map[string][]*domain.SavingsPotential
	benefs       map[string][]*domain.Beneficiary
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]*domain.Session),
		files:        make(map[string]*domain.SessionFile),
		accounts:     make(map[string]*domain.SessionAccount),
		transactions: make(map[string]*domain.SessionTransaction),
		insights:     make(map[string][]*domain.Insight),
		swots:        make(map[string][]*domain.SwotEntry),
		potentials:   make(map[string][]*domain.SavingsPotential),
		benefs:       make(map[string][]*domain.Beneficiary),
	}
}

// SeedCategories loads the read-only taxonomy.
func (s *Store) SeedCategories(categories []*domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]*domain.Category(nil), categories...)
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.Identifier == "" {
		return fmt.Errorf("session identifier is required")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	cp := *sess
	s.sessions[sess.Identifier] = &cp
	return nil
}

func (s *Store) GetSession(ctx context.Context, identifier string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[identifier]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, identifier, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identifier]
	if !ok {
		return fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	sess.Status = status
	return nil
}

func (s *Store) SetOverallAssessment(ctx context.Context, identifier string, a domain.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identifier]
	if !ok {
		return fmt.Errorf("session %s: %w", identifier, store.ErrNotFound)
	}
	sess.OverallAssessment = a.Body
	sess.OverallAssessmentTitle = a.Title
	return nil
}

func (s *Store) AddSessionFile(ctx context.Context, f *domain.SessionFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	cp := *f
	s.files[f.ID] = &cp
	return nil
}

func (s *Store) ListSessionFiles(ctx context.Context, sessionID string) ([]*domain.SessionFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.SessionFile
	for _, f := range s.files {
		if f.SessionID == sessionID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SetFilePassword(ctx context.Context, fileID, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok {
		return fmt.Errorf("file %s: %w", fileID, store.ErrNotFound)
	}
	if f.Password != nil {
		return nil
	}
	f.Password = &password
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, a *domain.SessionAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, sessionID string) ([]*domain.SessionAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.SessionAccount
	for _, a := range s.accounts {
		if a.SessionID == sessionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertTransactions(ctx context.Context, rows []*domain.SessionTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		cp := *row
		s.transactions[row.ID] = &cp
		s.txOrder = append(s.txOrder, row.ID)
	}
	return nil
}

func (s *Store) accountIDs(sessionID string) map[string]bool {
	ids := make(map[string]bool)
	for _, a := range s.accounts {
		if a.SessionID == sessionID {
			ids[a.ID] = true
		}
	}
	return ids
}

func (s *Store) listSessionTransactions(sessionID string, onlyUncategorized bool) []*domain.SessionTransaction {
	ids := s.accountIDs(sessionID)
	var out []*domain.SessionTransaction
	for _, txID := range s.txOrder {
		tx, ok := s.transactions[txID]
		if !ok || !ids[tx.AccountID] {
			continue
		}
		if onlyUncategorized && tx.CategoryID != nil {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *Store) ListTransactions(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSessionTransactions(sessionID, false), nil
}

func (s *Store) ListUncategorized(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSessionTransactions(sessionID, true), nil
}

func (s *Store) AssignCategory(ctx context.Context, transactionID, categoryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[transactionID]
	if !ok {
		return false, fmt.Errorf("transaction %s: %w", transactionID, store.ErrNotFound)
	}
	if tx.CategoryID != nil {
		return false, nil
	}
	tx.CategoryID = &categoryID
	return true, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Category, len(s.categories))
	for i, c := range s.categories {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) ReplaceInsights(ctx context.Context, sessionID string, insights []*domain.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, prev := range s.insights[sessionID] {
		prev.IsLatest = false
	}
	for _, in := range insights {
		cp := *in
		cp.SessionID = sessionID
		cp.IsLatest = true
		s.insights[sessionID] = append(s.insights[sessionID], &cp)
	}
	return nil
}

func (s *Store) InsertSwotEntries(ctx context.Context, entries []*domain.SwotEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		cp := *e
		s.swots[e.SessionID] = append(s.swots[e.SessionID], &cp)
	}
	return nil
}

func (s *Store) InsertSavingsPotentials(ctx context.Context, rows []*domain.SavingsPotential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := *r
		s.potentials[r.SessionID] = append(s.potentials[r.SessionID], &cp)
	}
	return nil
}

func (s *Store) InsertBeneficiaries(ctx context.Context, rows []*domain.Beneficiary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := *r
		s.benefs[r.SessionID] = append(s.benefs[r.SessionID], &cp)
	}
	return nil
}

func (s *Store) DeleteDerivedData(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.potentials, sessionID)
	delete(s.swots, sessionID)
	delete(s.insights, sessionID)
	delete(s.benefs, sessionID)
	ids := s.accountIDs(sessionID)
	for txID, tx := range s.transactions {
		if ids[tx.AccountID] {
			delete(s.transactions, txID)
		}
	}
	remaining := s.txOrder[:0]
	for _, txID := range s.txOrder {
		if _, ok := s.transactions[txID]; ok {
			remaining = append(remaining, txID)
		}
	}
	s.txOrder = remaining
	for id := range ids {
		delete(s.accounts, id)
	}
	return nil
}

// Insights returns the session's insight rows, latest first ordering not
// guaranteed. Test helper.
func (s *Store) Insights(sessionID string) []*domain.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Insight, len(s.insights[sessionID]))
	for i, in := range s.insights[sessionID] {
		cp := *in
		out[i] = &cp
	}
	return out
}

// SwotEntries returns the session's SWOT rows. Test helper.
func (s *Store) SwotEntries(sessionID string) []*domain.SwotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.SwotEntry, len(s.swots[sessionID]))
	for i, e := range s.swots[sessionID] {
		cp := *e
		out[i] = &cp
	}
	return out
}

// SavingsPotentials returns the session's savings potential rows. Test helper.
func (s *Store) SavingsPotentials(sessionID string) []*domain.SavingsPotential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.SavingsPotential, len(s.potentials[sessionID]))
	for i, p := range s.potentials[sessionID] {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Beneficiaries returns the session's beneficiary rows. Test helper.
func (s *Store) Beneficiaries(sessionID string) []*domain.Beneficiary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Beneficiary, len(s.benefs[sessionID]))
	for i, b := range s.benefs[sessionID] {
		cp := *b
		out[i] = &cp
	}
	return out
}

// Ensure Store implements the full persistence surface.
var _ store.Store = (*Store)(nil)
