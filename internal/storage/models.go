package storage

import (
	"database/sql"
	"time"
)

// KYC document statuses as stored in kyc_documents.status.
const (
	StatusPending      = "Pending"
	StatusApproved     = "Approved"
	StatusManualReview = "Manual Review"
)

type KycDocument struct {
	ID         int64
	Filename   string
	Status     string
	CrbScore   sql.NullInt64
	CreatedAt  time.Time
	ScreenedAt sql.NullTime
}

type LinkedCard struct {
	ID        int64
	CardName  string
	CardLast4 string
	CreatedAt time.Time
}

type StatusCount struct {
	Status string
	Count  int64
}
