package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"finai/internal/chat"
	"finai/internal/config"
	"finai/internal/log"
)

type chatInput struct {
	Message   string `yaml:"message"`
	SessionID string `yaml:"session_id"`
}

// chatCmd asks the assistant one question. The model is used when
// ANTHROPIC_API_KEY is set; otherwise the reply is local.
func chatCmd(loadConfig func() *config.Config, newLogger func() *log.Logger) *cobra.Command {
	var (
		file    string
		session string
		local   bool
	)

	c := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the financial assistant a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := chatInput{Message: strings.Join(args, " "), SessionID: session}
			if file != "" {
				if len(args) > 0 {
					return errors.New("pass the message as arguments or with --file, not both")
				}
				if err := readInput(file, cmd.InOrStdin(), &in); err != nil {
					return err
				}
				if session != "" {
					in.SessionID = session
				}
			}

			logger := newLogger()
			opts := chat.Options{Logger: logger}
			if cfg := loadConfig(); !local && cfg.AIEnabled() {
				opts.Completer = chat.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.LLMModel)
				opts.Timeout = cfg.LLMTimeout
			}

			reply := chat.New(opts).Reply(cmd.Context(), in.SessionID, in.Message)
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with message and session_id")
	c.Flags().StringVar(&session, "session", "", "session id to continue")
	c.Flags().BoolVar(&local, "local", false, "never call the language model")
	return c
}
