package services

import (
	"math/rand/v2"

	"finai/internal/storage"
)

const (
	MinCRBScore = 300
	MaxCRBScore = 850

	// ApprovalThreshold is the lowest score that is not auto-approved.
	ApprovalThreshold = 500
)

// Screener simulates a Credit Reference Bureau lookup.
type Screener struct {
	intN func(n int) int
}

func NewScreener() *Screener {
	return &Screener{intN: rand.IntN}
}

// Screen draws a score in [MinCRBScore, MaxCRBScore]. Scores above the
// threshold are approved; the rest go to manual review.
func (s *Screener) Screen() (status string, score int) {
	score = MinCRBScore + s.intN(MaxCRBScore-MinCRBScore+1)
	return Decide(score), score
}

func Decide(score int) string {
	if score > ApprovalThreshold {
		return storage.StatusApproved
	}
	return storage.StatusManualReview
}
