package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"finai/internal/log"
	"finai/internal/storage"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrCardName = errors.New("card holder name is required")
)

// OnboardingRepository is the part of the SQLite repository onboarding uses.
type OnboardingRepository interface {
	CreateKYCDocument(ctx context.Context, filename string) (storage.KycDocument, error)
	GetKYCDocument(ctx context.Context, id int64) (storage.KycDocument, error)
	PendingKYCDocuments(ctx context.Context, limit int) ([]storage.KycDocument, error)
	CompleteKYCScreening(ctx context.Context, id int64, status string, crbScore int) (bool, error)
	CreateLinkedCard(ctx context.Context, name, last4 string) (storage.LinkedCard, error)
}

// ScreeningPublisher enqueues documents for the screening worker.
type ScreeningPublisher interface {
	PublishKYCScreening(ctx context.Context, documentID int64, filename string) error
}

type (
	KYCResult struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		CRBScore *int   `json:"crb_score"`
		Message  string `json:"message"`
	}

	CardResult struct {
		ID      int64  `json:"id"`
		Last4   string `json:"card_last4"`
		Message string `json:"message"`
	}
)

// OnboardingService stores KYC uploads and linked cards. With a publisher the
// CRB check runs in the worker; without one it runs inline before returning.
type OnboardingService struct {
	repo      OnboardingRepository
	publisher ScreeningPublisher
	screener  *Screener
	uploadDir string
	logger    *log.Logger
}

func NewOnboardingService(repo OnboardingRepository, publisher ScreeningPublisher, screener *Screener, uploadDir string, logger *log.Logger) *OnboardingService {
	if screener == nil {
		screener = NewScreener()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &OnboardingService{
		repo:      repo,
		publisher: publisher,
		screener:  screener,
		uploadDir: uploadDir,
		logger:    logger.WithComponent(log.ComponentOnboarding),
	}
}

// Async reports whether screening is delegated to the worker.
func (s *OnboardingService) Async() bool {
	return s.publisher != nil
}

// SubmitKYC saves the uploaded file, records it and screens it.
func (s *OnboardingService) SubmitKYC(ctx context.Context, filename string, content io.Reader) (*KYCResult, error) {
	name := SecureFilename(filename)
	if name == "" {
		return nil, ErrNoFile
	}

	stored, err := s.saveUpload(name, content)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.CreateKYCDocument(ctx, stored)
	if err != nil {
		if rmErr := os.Remove(filepath.Join(s.uploadDir, stored)); rmErr != nil {
			s.logger.WarnContext(ctx, "Failed to remove orphaned upload",
				log.FieldFilename, stored,
				log.FieldError, rmErr)
		}
		return nil, fmt.Errorf("save kyc document: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishKYCScreening(ctx, doc.ID, doc.Filename); err != nil {
			// The worker's pending sweep picks the document up later.
			s.logger.WarnContext(ctx, "Failed to publish screening message",
				log.FieldDocumentID, doc.ID,
				log.FieldError, err)
		}
		return &KYCResult{
			ID:      doc.ID,
			Status:  doc.Status,
			Message: "Document received. CRB screening is in progress.",
		}, nil
	}

	doc, err = s.ScreenDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return kycResult(doc), nil
}

// ScreenDocument runs the CRB check on a pending document and returns the
// stored outcome. Already screened documents are returned unchanged.
func (s *OnboardingService) ScreenDocument(ctx context.Context, id int64) (storage.KycDocument, error) {
	doc, err := s.repo.GetKYCDocument(ctx, id)
	if err != nil {
		return storage.KycDocument{}, err
	}
	if doc.Status != storage.StatusPending {
		return doc, nil
	}

	status, score := s.screener.Screen()
	if _, err := s.repo.CompleteKYCScreening(ctx, id, status, score); err != nil {
		return storage.KycDocument{}, err
	}

	s.logger.InfoContext(ctx, "KYC document screened",
		log.NewFields().WithDocument(doc.ID, doc.Filename, status).WithOperation(log.OpScreen).ToSlice()...)

	return s.repo.GetKYCDocument(ctx, id)
}

// ScreenPending screens up to limit pending documents and returns how many
// were processed. Individual failures are logged and skipped.
func (s *OnboardingService) ScreenPending(ctx context.Context, limit int) (int, error) {
	docs, err := s.repo.PendingKYCDocuments(ctx, limit)
	if err != nil {
		return 0, err
	}

	screened := 0
	for _, doc := range docs {
		if ctx.Err() != nil {
			return screened, ctx.Err()
		}
		if _, err := s.ScreenDocument(ctx, doc.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to screen pending document",
				log.FieldDocumentID, doc.ID,
				log.FieldError, err)
			continue
		}
		screened++
	}
	return screened, nil
}

// LinkCard stores the card holder name and the last four digits of number.
// Numbers with fewer than four digits are stored as "0000".
func (s *OnboardingService) LinkCard(ctx context.Context, name, number string) (*CardResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCardName
	}

	card, err := s.repo.CreateLinkedCard(ctx, name, LastFour(number))
	if err != nil {
		return nil, fmt.Errorf("save linked card: %w", err)
	}

	s.logger.InfoContext(ctx, "Card linked", log.FieldCardLast4, card.CardLast4)

	return &CardResult{
		ID:      card.ID,
		Last4:   card.CardLast4,
		Message: fmt.Sprintf("Card ending in %s securely linked and stored.", card.CardLast4),
	}, nil
}

// saveUpload writes content under the upload directory and returns the
// stored file name, prefixed so equal names do not overwrite each other.
func (s *OnboardingService) saveUpload(name string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	stored := uuid.NewString()[:8] + "_" + name
	path := filepath.Join(s.uploadDir, stored)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return stored, nil
}

func kycResult(doc storage.KycDocument) *KYCResult {
	res := &KYCResult{ID: doc.ID, Status: doc.Status}
	if doc.CrbScore.Valid {
		score := int(doc.CrbScore.Int64)
		res.CRBScore = &score
		res.Message = fmt.Sprintf("Document processed & checked. CRB Status: %s (Score: %d)", doc.Status, score)
	} else {
		res.Message = "Document received. CRB screening is in progress."
	}
	return res
}

// SecureFilename reduces an uploaded file name to a safe base name made of
// letters, digits, dots, dashes and underscores.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// LastFour returns the last four digits of a card number.
func LastFour(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "0000"
	}
	return string(digits[len(digits)-4:])
}
