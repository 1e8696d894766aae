package models

import "time"

// AccountCategory mirrors the CHECK constraint on accounts.category.
type AccountCategory string

// Account is a row of the accounts table. There is no balance column; balances
// are folded from journal_lines on read.
type Account struct {
	AccountID string          `db:"account_id"`
	Name      string          `db:"name"`
	Category  AccountCategory `db:"category"`
	AuditFields
}

// AuditFields holds standard audit timestamps for database models.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
