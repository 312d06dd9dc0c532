package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The worker and the server may share the file.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateKYCDocument stores an uploaded document in the Pending state.
func (r *SQLiteRepository) CreateKYCDocument(ctx context.Context, filename string) (KycDocument, error) {
	id, err := r.queries.CreateKycDocument(ctx, CreateKycDocumentParams{
		Filename:  filename,
		Status:    StatusPending,
		CreatedAt: r.now(),
	})
	if err != nil {
		return KycDocument{}, fmt.Errorf("create kyc document: %w", err)
	}

	slog.InfoContext(ctx, "KYC document saved to SQLite", "id", id, "filename", filename)

	return r.GetKYCDocument(ctx, id)
}

func (r *SQLiteRepository) GetKYCDocument(ctx context.Context, id int64) (KycDocument, error) {
	doc, err := r.queries.GetKycDocument(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return KycDocument{}, fmt.Errorf("kyc document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return KycDocument{}, fmt.Errorf("get kyc document: %w", err)
	}
	return doc, nil
}

// PendingKYCDocuments returns the oldest documents still awaiting screening.
func (r *SQLiteRepository) PendingKYCDocuments(ctx context.Context, limit int) ([]KycDocument, error) {
	docs, err := r.queries.GetPendingKycDocuments(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending kyc documents: %w", err)
	}
	return docs, nil
}

// CompleteKYCScreening records the screening outcome. It reports false when
// the document was already screened, so a redelivered message is a no-op.
func (r *SQLiteRepository) CompleteKYCScreening(ctx context.Context, id int64, status string, crbScore int) (bool, error) {
	n, err := r.queries.CompleteKycScreening(ctx, CompleteKycScreeningParams{
		Status:     status,
		CrbScore:   int64(crbScore),
		ScreenedAt: r.now(),
		ID:         id,
	})
	if err != nil {
		return false, fmt.Errorf("complete kyc screening: %w", err)
	}

	if n == 0 {
		slog.DebugContext(ctx, "KYC document already screened", "id", id)
		return false, nil
	}

	slog.InfoContext(ctx, "KYC document screened", "id", id, "status", status, "crb_score", crbScore)
	return true, nil
}

// KYCStatusCounts returns the number of documents per status.
func (r *SQLiteRepository) KYCStatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.queries.CountKycDocumentsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count kyc documents: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// CreateLinkedCard stores a card by name and last four digits only.
func (r *SQLiteRepository) CreateLinkedCard(ctx context.Context, name, last4 string) (LinkedCard, error) {
	createdAt := r.now()
	id, err := r.queries.CreateLinkedCard(ctx, CreateLinkedCardParams{
		CardName:  name,
		CardLast4: last4,
		CreatedAt: createdAt,
	})
	if err != nil {
		return LinkedCard{}, fmt.Errorf("create linked card: %w", err)
	}

	slog.InfoContext(ctx, "Card linked", "id", id, "card_last4", last4)

	return LinkedCard{ID: id, CardName: name, CardLast4: last4, CreatedAt: createdAt}, nil
}

func (r *SQLiteRepository) ListLinkedCards(ctx context.Context) ([]LinkedCard, error) {
	cards, err := r.queries.ListLinkedCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list linked cards: %w", err)
	}
	return cards, nil
}
