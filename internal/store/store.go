// Package store defines the persistence boundary of the pipeline. The
// orchestration layer is the only writer; every other component receives
// the narrow interface it needs.
package store

import (
	"context"
	"errors"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// SessionRepository manages session rows and their lifecycle fields.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, identifier string) (*domain.Session, error)
	UpdateSessionStatus(ctx context.Context, identifier, status string) error
	SetOverallAssessment(ctx context.Context, identifier string, a domain.Assessment) error
}

// FileRepository manages uploaded statement files and their cached
// passwords.
type FileRepository interface {
	AddSessionFile(ctx context.Context, f *domain.SessionFile) error
	ListSessionFiles(ctx context.Context, sessionID string) ([]*domain.SessionFile, error)

	// SetFilePassword caches a discovered password. It is a no-op when a
	// password has already been recorded for the file.
	SetFilePassword(ctx context.Context, fileID, password string) error
}

// AccountRepository manages accounts and their transactions.
type AccountRepository interface {
	CreateAccount(ctx context.Context, a *domain.SessionAccount) error
	ListAccounts(ctx context.Context, sessionID string) ([]*domain.SessionAccount, error)

	InsertTransactions(ctx context.Context, rows []*domain.SessionTransaction) error

	// ListTransactions returns every transaction of the session's accounts
	// ordered by date ascending.
	ListTransactions(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error)

	// ListUncategorized returns the session's transactions with no category
	// assigned, ordered by date ascending.
	ListUncategorized(ctx context.Context, sessionID string) ([]*domain.SessionTransaction, error)

	// AssignCategory sets the category of a transaction if and only if it
	// is still unset. Returns true when the row was updated.
	AssignCategory(ctx context.Context, transactionID, categoryID string) (bool, error)
}

// CategoryRepository exposes the read-only category taxonomy.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// InsightRepository persists the narrative generator's output.
type InsightRepository interface {
	// ReplaceInsights flags all previous insights of the session as not
	// latest and inserts the new batch as latest.
	ReplaceInsights(ctx context.Context, sessionID string, insights []*domain.Insight) error
	InsertSwotEntries(ctx context.Context, entries []*domain.SwotEntry) error
	InsertSavingsPotentials(ctx context.Context, rows []*domain.SavingsPotential) error
	InsertBeneficiaries(ctx context.Context, rows []*domain.Beneficiary) error
}

// CleanupRepository removes derived data ahead of a pipeline retry.
type CleanupRepository interface {
	// DeleteDerivedData removes savings potentials, SWOT rows, insights,
	// beneficiaries, transactions and accounts for the session in one
	// cleanup. The session row and its uploaded files survive.
	DeleteDerivedData(ctx context.Context, sessionID string) error
}

// Store is the full persistence surface used by the pipeline.
type Store interface {
	SessionRepository
	FileRepository
	AccountRepository
	CategoryRepository
	InsightRepository
	CleanupRepository
}
