// Package store defines the per-sender business record repository and its
// backends. All records are keyed by the WhatsApp sender identity and are
// created lazily on first contact; users are never deleted.
package store

import (
	"context"
	"time"
)

// Stage identifies where a sender is in the onboarding conversation.
type Stage string

const (
	// StageNew means the sender has never messaged before.
	StageNew Stage = "new"
	// StageAwaitingName means the welcome was sent and the next plain
	// message is treated as the business name.
	StageAwaitingName Stage = "awaiting_name"
	// StageActive means onboarding is complete.
	StageActive Stage = "active"
)

// User is the per-sender profile record.
type User struct {
	Sender       string    `db:"sender"`
	BusinessName string    `db:"business_name"`
	Stage        Stage     `db:"stage"`
	CreatedAt    time.Time `db:"created_at"`
}

// SaleRecord is one immutable ledger entry. Amount is in whole naira.
type SaleRecord struct {
	ID         string    `db:"id" json:"id"`
	Product    string    `db:"product" json:"product"`
	Amount     int64     `db:"amount" json:"amount"`
	Quantity   int       `db:"quantity" json:"quantity"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Stats aggregates counters exposed by the health endpoint.
type Stats struct {
	Users      int
	TotalSales int
}

// Store is the repository for users, sales ledgers, and inventory counts.
//
// Individual operations are atomic per backend, but a read-classify-mutate
// sequence spanning several calls for the same sender is not serialized:
// two webhooks from one sender racing each other can interleave. People
// type one message at a time, so this is accepted.
type Store interface {
	// GetOrCreateUser returns the sender's profile, creating a fresh
	// StageNew record on first contact. The second result reports whether
	// the record was created by this call.
	GetOrCreateUser(ctx context.Context, sender string) (User, bool, error)

	// SetStage moves the sender to the given conversation stage.
	SetStage(ctx context.Context, sender string, st Stage) error

	// SetBusinessName records the business name and transitions the
	// sender to StageActive.
	SetBusinessName(ctx context.Context, sender, name string) error

	// AppendSale appends one record to the sender's ledger and returns
	// the lifetime record count after the append.
	AppendSale(ctx context.Context, sender string, rec SaleRecord) (int, error)

	// SalesSince returns the sender's records with RecordedAt >= since,
	// in original chronological order.
	SalesSince(ctx context.Context, sender string, since time.Time) ([]SaleRecord, error)

	// AddStock adds qty (which may be negative) to the product's count,
	// starting from zero for unknown products, and returns the new total.
	// Counts are never clamped; overselling drives them negative.
	AddStock(ctx context.Context, sender, product string, qty int) (int, error)

	// Inventory returns the sender's product counts.
	Inventory(ctx context.Context, sender string) (map[string]int, error)

	// Stats returns process-wide aggregate counters.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}
