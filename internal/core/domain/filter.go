package domain

import (
	"strings"
	"time"
)

// AccountFilter narrows listAccounts. Zero values match everything.
type AccountFilter struct {
	Category *AccountCategory
	NameLike string
}

// Matches applies the filter in memory; the pgsql adapter translates it to SQL instead.
func (f AccountFilter) Matches(a Account) bool {
	if f.Category != nil && a.Category != *f.Category {
		return false
	}
	if f.NameLike != "" && !containsFold(a.Name, f.NameLike) {
		return false
	}
	return true
}

// EntryFilter narrows listEntries. From and To are inclusive calendar dates.
type EntryFilter struct {
	AccountID       string
	From            *time.Time
	To              *time.Time
	DescriptionLike string
}

// Matches applies the filter in memory.
func (f EntryFilter) Matches(e JournalEntry) bool {
	if f.From != nil && e.EntryDate.Before(TruncateDate(*f.From)) {
		return false
	}
	if f.To != nil && e.EntryDate.After(TruncateDate(*f.To)) {
		return false
	}
	if f.DescriptionLike != "" && !containsFold(e.Description, f.DescriptionLike) {
		return false
	}
	if f.AccountID != "" {
		for _, l := range e.Lines {
			if l.AccountID == f.AccountID {
				return true
			}
		}
		return false
	}
	return true
}

// TruncateDate drops the time-of-day so entries compare by calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
