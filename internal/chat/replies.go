package chat

import (
	"math/rand/v2"
	"strings"
)

var defaultQuickReplies = []string{
	"How do I start budgeting?",
	"What is an emergency fund?",
	"How to improve loan eligibility?",
	"Best ways to save money?",
	"What is SIP investing?",
	"How to manage debt?",
}

var contextualReplies = []struct {
	keywords []string
	replies  []string
}{
	{[]string{"budget", "spend"}, []string{"What is the 50/30/20 rule?", "How to reduce expenses?", "Tips for saving money?"}},
	{[]string{"save", "saving"}, []string{"Where should I invest?", "What is SIP?", "How to build an emergency fund?"}},
	{[]string{"loan", "borrow"}, []string{"How to improve credit score?", "What is microfinance?", "How much EMI can I afford?"}},
	{[]string{"invest"}, []string{"SIP vs lump sum?", "Best investment for beginners?", "What is mutual fund?"}},
}

type quickReplies struct {
	shuffle func(n int) []int
}

func newQuickReplies() *quickReplies {
	return &quickReplies{shuffle: rand.Perm}
}

func (q *quickReplies) defaults() []string {
	return clone(defaultQuickReplies)
}

func (q *quickReplies) first(n int) []string {
	return clone(defaultQuickReplies[:n])
}

// contextual picks follow-up suggestions from the topic of the message,
// or three random defaults when no topic matches.
func (q *quickReplies) contextual(msg string) []string {
	lower := strings.ToLower(msg)
	for _, c := range contextualReplies {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return clone(c.replies)
			}
		}
	}
	perm := q.shuffle(len(defaultQuickReplies))
	out := make([]string, 0, 3)
	for _, i := range perm[:3] {
		out = append(out, defaultQuickReplies[i])
	}
	return out
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
