package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"finai/internal/core"
	"finai/internal/engine/budget"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 500
	temperature      = 0.7
)

var errEmptyCompletion = errors.New("model returned no text")

// AnthropicCompleter sends conversations to the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	system    string
}

// NewAnthropicCompleter returns nil when apiKey is empty. Check before
// storing the result in Options.Completer: a nil pointer in the interface
// would count as configured.
func NewAnthropicCompleter(apiKey, model string, opts ...option.RequestOption) *AnthropicCompleter {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	if model == "" {
		model = DefaultModel
	}
	// A single attempt: failures fall back to the local router.
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &AnthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: DefaultMaxTokens,
		system:    SystemPrompt(),
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, conversation []Message) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(conversation))
	for _, m := range conversation {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: c.system}},
		Messages:    msgs,
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errEmptyCompletion
	}
	return b.String(), nil
}

// SystemPrompt describes the assistant and embeds the dashboard figures of
// the demo profile so model and local replies agree.
func SystemPrompt() string {
	dashboard := "No dashboard data is available."
	if res, err := budget.Analyze(demoBudget); err == nil {
		dashboard = fmt.Sprintf("- Income: %s | Savings Rate: %.1f%% | Health Score: %d/100\n"+
			"- Needs: %.1f%% | Wants: %.1f%% | Remaining after expenses: %s\n"+
			"- Top Expenses: %s",
			core.FormatKshWhole(res.Income), res.Buckets.Savings.Percentage, res.HealthScore,
			res.Buckets.Needs.Percentage, res.Buckets.Wants.Percentage, core.FormatKshWhole(res.Remaining),
			topExpenses(res.TopExpenses))
	}
	return `You are Fin AI, a financial coach focused on budgeting, savings, credit and financial inclusion.
You can also answer general questions accurately and helpfully.

The user's dashboard shows:
` + dashboard + `

Guidelines:
- No emojis.
- Format using HTML tags (<p>, <ul>, <li>, <strong>, <h3>). No Markdown.
- Keep responses concise: 2-4 paragraphs or sections at most.`
}

func topExpenses(items []core.CategoryAmount) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%s)", core.Category(it.Name).Label(), core.FormatKshWhole(it.Amount)))
	}
	return strings.Join(parts, ", ")
}
