package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/kayuse/usekudibackend/internal/domain"
)

// SessionRow is the sessions table schema.
type SessionRow struct {
	SessionID              string    `bigquery:"session_id"`
	Identifier             string    `bigquery:"identifier"`
	Name                   string    `bigquery:"name"`
	Email                  string    `bigquery:"email"`
	CustomerType           string    `bigquery:"customer_type"`
	ProcessingStatus       string    `bigquery:"processing_status"`
	Indexed                bool      `bigquery:"indexed"`
	OverallAssessment      string    `bigquery:"overall_assessment"`
	OverallAssessmentTitle string    `bigquery:"overall_assessment_title"`
	CreatedTS              time.Time `bigquery:"created_ts"`
}

func (r *SessionRow) toDomain() *domain.Session {
	return &domain.Session{
		ID:                     r.SessionID,
		Identifier:             r.Identifier,
		Name:                   r.Name,
		Email:                  r.Email,
		CustomerType:           r.CustomerType,
		Status:                 r.ProcessingStatus,
		Indexed:                r.Indexed,
		OverallAssessment:      r.OverallAssessment,
		OverallAssessmentTitle: r.OverallAssessmentTitle,
		CreatedAt:              r.CreatedTS,
	}
}

// SessionFileRow is the session_files table schema.
type SessionFileRow struct {
	FileID    string              `bigquery:"file_id"`
	SessionID string              `bigquery:"session_id"`
	GCSURI    string              `bigquery:"gcs_uri"`
	Password  bigquery.NullString `bigquery:"password"`
	BankID    bigquery.NullString `bigquery:"bank_id"`
	CreatedTS time.Time           `bigquery:"created_ts"`
}

func (r *SessionFileRow) toDomain() *domain.SessionFile {
	f := &domain.SessionFile{
		ID:        r.FileID,
		SessionID: r.SessionID,
		URI:       r.GCSURI,
		CreatedAt: r.CreatedTS,
	}
	if r.Password.Valid {
		v := r.Password.StringVal
		f.Password = &v
	}
	if r.BankID.Valid {
		v := r.BankID.StringVal
		f.BankID = &v
	}
	return f
}

// AccountRow is the session_accounts table schema.
type AccountRow struct {
	AccountID      string    `bigquery:"account_id"`
	SessionID      string    `bigquery:"session_id"`
	AccountName    string    `bigquery:"account_name"`
	AccountNumber  string    `bigquery:"account_number"`
	Currency       string    `bigquery:"currency"`
	CurrentBalance float64   `bigquery:"current_balance"`
	BankID         string    `bigquery:"bank_id"`
	CreatedTS      time.Time `bigquery:"created_ts"`
}

func (r *AccountRow) toDomain() *domain.SessionAccount {
	return &domain.SessionAccount{
		ID:             r.AccountID,
		SessionID:      r.SessionID,
		AccountName:    r.AccountName,
		AccountNumber:  r.AccountNumber,
		Currency:       r.Currency,
		CurrentBalance: r.CurrentBalance,
		BankID:         r.BankID,
		CreatedAt:      r.CreatedTS,
	}
}

// TransactionRow is the session_transactions table schema.
type TransactionRow struct {
	TransactionID   string               `bigquery:"transaction_id"`
	AccountID       string               `bigquery:"account_id"`
	CategoryID      bigquery.NullString  `bigquery:"category_id"`
	Currency        string               `bigquery:"currency"`
	TransactionDate civil.Date           `bigquery:"transaction_date"`
	Amount          float64              `bigquery:"amount"`
	BalanceAfter    bigquery.NullFloat64 `bigquery:"balance_after"`
	TransactionType string               `bigquery:"transaction_type"`
	Description     string               `bigquery:"description"`
	CreatedTS       time.Time            `bigquery:"created_ts"`
}

func transactionRow(t *domain.SessionTransaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   t.ID,
		AccountID:       t.AccountID,
		Currency:        t.Currency,
		TransactionDate: civil.DateOf(t.Date),
		Amount:          t.Amount,
		TransactionType: t.TransactionType,
		Description:     t.Description,
		CreatedTS:       t.CreatedAt,
	}
	if t.CategoryID != nil {
		row.CategoryID = bigquery.NullString{StringVal: *t.CategoryID, Valid: true}
	}
	if t.BalanceAfter != nil {
		row.BalanceAfter = bigquery.NullFloat64{Float64: *t.BalanceAfter, Valid: true}
	}
	return row
}

func (r *TransactionRow) toDomain() *domain.SessionTransaction {
	t := &domain.SessionTransaction{
		ID:              r.TransactionID,
		AccountID:       r.AccountID,
		Currency:        r.Currency,
		Date:            r.TransactionDate.In(time.UTC),
		Amount:          r.Amount,
		TransactionType: r.TransactionType,
		Description:     r.Description,
		CreatedAt:       r.CreatedTS,
	}
	if r.CategoryID.Valid {
		v := r.CategoryID.StringVal
		t.CategoryID = &v
	}
	if r.BalanceAfter.Valid {
		v := r.BalanceAfter.Float64
		t.BalanceAfter = &v
	}
	return t
}

// CategoryRow is the categories table schema.
type CategoryRow struct {
	CategoryID  string `bigquery:"category_id"`
	Name        string `bigquery:"name"`
	Icon        string `bigquery:"icon"`
	Description string `bigquery:"description"`
}

func (r *CategoryRow) toDomain() *domain.Category {
	return &domain.Category{
		ID:          r.CategoryID,
		Name:        r.Name,
		Icon:        r.Icon,
		Description: r.Description,
	}
}

// InsightRow is the insights table schema.
type InsightRow struct {
	InsightID   string              `bigquery:"insight_id"`
	SessionID   string              `bigquery:"session_id"`
	Title       string              `bigquery:"title"`
	Description string              `bigquery:"description"`
	Priority    string              `bigquery:"priority"`
	Type        string              `bigquery:"type"`
	Action      bigquery.NullString `bigquery:"action"`
	IsLatest    bool                `bigquery:"is_latest"`
	CreatedTS   time.Time           `bigquery:"created_ts"`
}

// SwotRow is the swots table schema.
type SwotRow struct {
	SwotID    string    `bigquery:"swot_id"`
	SessionID string    `bigquery:"session_id"`
	Analysis  string    `bigquery:"analysis"`
	Type      string    `bigquery:"type"`
	CreatedTS time.Time `bigquery:"created_ts"`
}

// SavingsPotentialRow is the savings_potentials table schema.
type SavingsPotentialRow struct {
	PotentialID string    `bigquery:"potential_id"`
	SessionID   string    `bigquery:"session_id"`
	Potential   string    `bigquery:"potential"`
	Amount      float64   `bigquery:"amount"`
	CreatedTS   time.Time `bigquery:"created_ts"`
}

// BeneficiaryRow is the beneficiaries table schema.
type BeneficiaryRow struct {
	BeneficiaryID    string    `bigquery:"beneficiary_id"`
	SessionID        string    `bigquery:"session_id"`
	Name             string    `bigquery:"name"`
	TotalAmount      float64   `bigquery:"total_amount"`
	TransactionCount int       `bigquery:"transaction_count"`
	CreatedTS        time.Time `bigquery:"created_ts"`
}
