package models

import "time"

// AuditEntry is one captured screenshot in an order's audit trail. Entries are
// append-only and never rewritten once stored.
type AuditEntry struct {
	Stage      string    `bson:"stage" json:"stage"`
	Reference  string    `bson:"reference" json:"reference"`
	CapturedAt time.Time `bson:"capturedAt" json:"captured_at"`
}
