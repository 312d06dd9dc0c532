// Package chat implements the financial assistant behind /api/chat.
//
// A reply comes from one of two sources. When a Completer is configured the
// message and the session's recent history go to the language model. When
// there is no Completer, or the call fails, the message is routed by
// keyword to canned text or to a live run of one of the scoring engines.
// Failures of the model call are logged and never reach the caller.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"finai/internal/log"
)

const (
	// HistoryLimit is the number of messages kept per session and sent
	// with each model call.
	HistoryLimit   = 10
	DefaultTimeout = 15 * time.Second

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source tells which path produced a reply.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
)

const (
	CategoryAI        = "ai"
	CategoryGeneral   = "general"
	CategoryGreeting  = "greeting"
	CategoryFinancial = "financial"
	CategoryLoan      = "loan"
	CategorySavings   = "savings"
	CategoryRisk      = "risk"
	CategoryExpense   = "expense"
)

const emptyPrompt = "Type a question and I will analyze your financial data to provide specific insights."

type (
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	Reply struct {
		Response     string   `json:"response"`
		QuickReplies []string `json:"quick_replies"`
		Category     string   `json:"category"`
		Source       Source   `json:"source"`
		SessionID    string   `json:"session_id"`
	}

	// Completer produces the assistant's next message for a conversation
	// that ends with a user message.
	Completer interface {
		Complete(ctx context.Context, conversation []Message) (string, error)
	}

	Options struct {
		// Completer may be nil, in which case every reply is local.
		Completer Completer
		Sessions  SessionStore
		Timeout   time.Duration
		Logger    *log.Logger
	}

	Assistant struct {
		completer Completer
		sessions  SessionStore
		timeout   time.Duration
		logger    *log.Logger
		replies   *quickReplies
	}
)

func New(opts Options) *Assistant {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Sessions == nil {
		opts.Sessions = NewMemoryStore(1000, time.Hour)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	return &Assistant{
		completer: opts.Completer,
		sessions:  opts.Sessions,
		timeout:   opts.Timeout,
		logger:    opts.Logger.WithComponent(log.ComponentChat),
		replies:   newQuickReplies(),
	}
}

// AIEnabled reports whether replies may come from the language model.
func (a *Assistant) AIEnabled() bool {
	return a.completer != nil
}

// SessionID returns id when it is a valid session identifier and a fresh
// one otherwise.
func SessionID(id string) string {
	if parsed, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}

// Reply answers a message within a session. It never fails: any problem on
// the model path falls through to the local router.
func (a *Assistant) Reply(ctx context.Context, sessionID, message string) Reply {
	sessionID = SessionID(sessionID)
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Reply{
			Response:     emptyPrompt,
			QuickReplies: a.replies.defaults(),
			Category:     CategoryGeneral,
			Source:       SourceLocal,
			SessionID:    sessionID,
		}
	}

	if a.completer != nil {
		if text, ok := a.ask(ctx, sessionID, msg); ok {
			return Reply{
				Response:     text,
				QuickReplies: a.replies.contextual(msg),
				Category:     CategoryAI,
				Source:       SourceAI,
				SessionID:    sessionID,
			}
		}
	}

	r := route(msg, a.replies)
	r.Source = SourceLocal
	r.SessionID = sessionID
	return r
}

// ask sends the session window to the completer. History is only written
// back when the call succeeds.
func (a *Assistant) ask(ctx context.Context, sessionID, msg string) (string, bool) {
	logger := a.logger.With(log.FieldSessionID, sessionID)

	history, err := a.sessions.History(ctx, sessionID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load chat history, continuing without it", log.FieldError, err)
		history = nil
	}
	window := Window(append(history, Message{Role: RoleUser, Content: msg}))

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.completer.Complete(callCtx, window)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyCompletion
	}
	if err != nil {
		logger.WarnContext(ctx, "Model call failed, using local reply",
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds())
		return "", false
	}

	updated := Window(append(window, Message{Role: RoleAssistant, Content: text}))
	if err := a.sessions.Save(ctx, sessionID, updated); err != nil {
		logger.WarnContext(ctx, "Failed to save chat history", log.FieldError, err)
	}
	logger.DebugContext(ctx, "Model reply generated",
		log.FieldDuration, time.Since(start).Milliseconds(),
		"history_len", len(updated))
	return text, true
}

// Window keeps the last HistoryLimit messages. A window never starts with
// an assistant message, so the conversation always opens with the user.
func Window(msgs []Message) []Message {
	if len(msgs) > HistoryLimit {
		msgs = msgs[len(msgs)-HistoryLimit:]
	}
	for len(msgs) > 0 && msgs[0].Role != RoleUser {
		msgs = msgs[1:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
