package services

import (
	"context"
	"iter"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a journal entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves one page of entries matching the filter.
	ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// IterateEntries lazily walks every entry matching the filter, page by page.
	IterateEntries(ctx context.Context, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error]
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostEntry validates and atomically persists a balanced journal entry.
	PostEntry(ctx context.Context, input domain.PostEntryInput) (*domain.JournalEntry, error)

	// ReverseEntry posts a new entry that swaps every side of an existing one.
	ReverseEntry(ctx context.Context, entryID string, input domain.ReverseEntryInput) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
