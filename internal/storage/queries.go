package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const createKycDocument = `-- name: CreateKycDocument :execlastid
INSERT INTO kyc_documents (filename, status, created_at)
VALUES (?, ?, ?)
`

type CreateKycDocumentParams struct {
	Filename  string
	Status    string
	CreatedAt time.Time
}

func (q *Queries) CreateKycDocument(ctx context.Context, arg CreateKycDocumentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createKycDocument, arg.Filename, arg.Status, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const getKycDocument = `-- name: GetKycDocument :one
SELECT id, filename, status, crb_score, created_at, screened_at
FROM kyc_documents
WHERE id = ?
`

func (q *Queries) GetKycDocument(ctx context.Context, id int64) (KycDocument, error) {
	row := q.db.QueryRowContext(ctx, getKycDocument, id)
	var i KycDocument
	err := row.Scan(&i.ID, &i.Filename, &i.Status, &i.CrbScore, &i.CreatedAt, &i.ScreenedAt)
	return i, err
}

const getPendingKycDocuments = `-- name: GetPendingKycDocuments :many
SELECT id, filename, status, crb_score, created_at, screened_at
FROM kyc_documents
WHERE status = 'Pending'
ORDER BY created_at ASC, id ASC
LIMIT ?
`

func (q *Queries) GetPendingKycDocuments(ctx context.Context, limit int64) ([]KycDocument, error) {
	rows, err := q.db.QueryContext(ctx, getPendingKycDocuments, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KycDocument
	for rows.Next() {
		var i KycDocument
		if err := rows.Scan(&i.ID, &i.Filename, &i.Status, &i.CrbScore, &i.CreatedAt, &i.ScreenedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const completeKycScreening = `-- name: CompleteKycScreening :execrows
UPDATE kyc_documents
SET status = ?, crb_score = ?, screened_at = ?
WHERE id = ? AND status = 'Pending'
`

type CompleteKycScreeningParams struct {
	Status     string
	CrbScore   int64
	ScreenedAt time.Time
	ID         int64
}

func (q *Queries) CompleteKycScreening(ctx context.Context, arg CompleteKycScreeningParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, completeKycScreening, arg.Status, arg.CrbScore, arg.ScreenedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countKycDocumentsByStatus = `-- name: CountKycDocumentsByStatus :many
SELECT status, COUNT(*) AS count
FROM kyc_documents
GROUP BY status
ORDER BY status
`

func (q *Queries) CountKycDocumentsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := q.db.QueryContext(ctx, countKycDocumentsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StatusCount
	for rows.Next() {
		var i StatusCount
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createLinkedCard = `-- name: CreateLinkedCard :execlastid
INSERT INTO linked_cards (card_name, card_last4, created_at)
VALUES (?, ?, ?)
`

type CreateLinkedCardParams struct {
	CardName  string
	CardLast4 string
	CreatedAt time.Time
}

func (q *Queries) CreateLinkedCard(ctx context.Context, arg CreateLinkedCardParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createLinkedCard, arg.CardName, arg.CardLast4, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listLinkedCards = `-- name: ListLinkedCards :many
SELECT id, card_name, card_last4, created_at
FROM linked_cards
ORDER BY id DESC
`

func (q *Queries) ListLinkedCards(ctx context.Context) ([]LinkedCard, error) {
	rows, err := q.db.QueryContext(ctx, listLinkedCards)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LinkedCard
	for rows.Next() {
		var i LinkedCard
		if err := rows.Scan(&i.ID, &i.CardName, &i.CardLast4, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
