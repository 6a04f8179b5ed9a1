package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/coder/pretty"
	"github.com/coder/serpent"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/muesli/termenv"
	openaioption "github.com/openai/openai-go/option"

	"github.com/shaharia-lab/aichat"
	"github.com/shaharia-lab/aichat/observability"
)

var colorProfile = termenv.ColorProfile()

func errorf(format string, args ...any) {
	c := pretty.FgColor(colorProfile.Color("#ff0000"))
	pretty.Fprintf(os.Stderr, c, "err: "+format, args...)
}

const defaultSystemPrompt = "You are a helpful assistant. Keep your answers short."

type runOptions struct {
	provider         string
	model            string
	openAIKey        string
	openAIBaseURL    string
	anthropicKey     string
	anthropicBaseURL string
	systemPrompt     string
	maxTokens        int64
	historyDB        string
	verbose          bool
}

// buildProvider constructs the LLM provider selected by --provider. Exactly
// one vendor client is created and bound for the whole session.
func buildProvider(opts runOptions) (aichat.LLMProvider, error) {
	switch opts.provider {
	case "openai":
		if opts.openAIKey == "" {
			return nil, errors.New("$OPENAI_API_KEY is not set")
		}
		var clientOpts []openaioption.RequestOption
		if opts.openAIBaseURL != "" {
			clientOpts = append(clientOpts, openaioption.WithBaseURL(opts.openAIBaseURL))
		}
		model := opts.model
		if model == "" {
			model = "gpt-4o"
		}
		return aichat.NewOpenAILLMProvider(aichat.OpenAIProviderConfig{
			Client: aichat.NewOpenAIClient(opts.openAIKey, clientOpts...),
			Model:  model,
		}), nil
	case "anthropic":
		if opts.anthropicKey == "" {
			return nil, errors.New("$ANTHROPIC_API_KEY is not set")
		}
		var clientOpts []anthropicoption.RequestOption
		if opts.anthropicBaseURL != "" {
			clientOpts = append(clientOpts, anthropicoption.WithBaseURL(opts.anthropicBaseURL))
		}
		model := opts.model
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		return aichat.NewAnthropicLLMProvider(aichat.AnthropicProviderConfig{
			Client: aichat.NewAnthropicClient(opts.anthropicKey, clientOpts...),
			Model:  model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q, expected openai or anthropic", opts.provider)
	}
}

func run(inv *serpent.Invocation, opts runOptions) error {
	ctx := context.Background()

	provider, err := buildProvider(opts)
	if err != nil {
		return err
	}

	logger := observability.NewNullLogger()
	if opts.verbose {
		logger = observability.NewDefaultLogger()
	}

	var storage aichat.ChatHistoryStorage
	if opts.historyDB != "" {
		sqliteStorage, err := aichat.NewSQLiteChatHistoryStorage(opts.historyDB, logger)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer sqliteStorage.Close()
		storage = sqliteStorage
	}

	session, err := aichat.NewChatSession(ctx, aichat.ChatSessionConfig{
		Provider:      provider,
		RequestConfig: aichat.NewRequestConfig(aichat.WithMaxToken(opts.maxTokens)),
		Storage:       storage,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	if opts.systemPrompt != "" {
		session.System(opts.systemPrompt)
	}

	cyan := pretty.FgColor(colorProfile.Color("#00ffff"))
	gray := pretty.FgColor(colorProfile.Color("#808080"))

	scanner := bufio.NewScanner(inv.Stdin)
	for {
		fmt.Fprint(inv.Stdout, "You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if lowered := strings.ToLower(input); lowered == "exit" || lowered == "quit" {
			break
		}

		answer, err := session.User(ctx, input)
		if err != nil {
			// A single failed turn ends the whole session.
			errorf("%s\n", err)
			if aichat.IsCredentialsRejected(err) {
				fmt.Fprintln(inv.Stdout, "Hint: check the API key for this provider, or switch providers.")
			}
			break
		}

		pretty.Fprintf(inv.Stdout, cyan, "AI: %s\n", answer)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(inv.Stdout, "\nConversation history:")
	for _, message := range session.History() {
		pretty.Fprintf(inv.Stdout, gray, "%s: %s\n", message.Role, message.Text)
	}

	return nil
}

func main() {
	// Matches the behavior of tools that read a local .env; a missing file
	// is fine. Must happen before serpent resolves Env-backed options.
	_ = godotenv.Load()

	var opts runOptions
	cmd := &serpent.Command{
		Use:   "aichat",
		Short: "aichat is an interactive terminal chat client for OpenAI and Anthropic models",
		Handler: func(inv *serpent.Invocation) error {
			return run(inv, opts)
		},
		Options: []serpent.Option{
			{
				Name:          "provider",
				Description:   "The LLM backend to chat with: openai or anthropic.",
				Flag:          "provider",
				FlagShorthand: "p",
				Default:       "openai",
				Env:           "AICHAT_PROVIDER",
				Value:         serpent.StringOf(&opts.provider),
			},
			{
				Name:          "model",
				Description:   "The model to use, e.g. gpt-4o or claude-sonnet-4-5-20250929. Defaults per provider.",
				Flag:          "model",
				FlagShorthand: "m",
				Env:           "AICHAT_MODEL",
				Value:         serpent.StringOf(&opts.model),
			},
			{
				Name:        "openai-key",
				Description: "The OpenAI API key to use.",
				Flag:        "openai-key",
				Env:         "OPENAI_API_KEY",
				Value:       serpent.StringOf(&opts.openAIKey),
			},
			{
				Name:        "openai-base-url",
				Description: "Override the OpenAI API base URL.",
				Flag:        "openai-base-url",
				Env:         "OPENAI_BASE_URL",
				Value:       serpent.StringOf(&opts.openAIBaseURL),
			},
			{
				Name:        "anthropic-key",
				Description: "The Anthropic API key to use.",
				Flag:        "anthropic-key",
				Env:         "ANTHROPIC_API_KEY",
				Value:       serpent.StringOf(&opts.anthropicKey),
			},
			{
				Name:        "anthropic-base-url",
				Description: "Override the Anthropic API base URL.",
				Flag:        "anthropic-base-url",
				Env:         "ANTHROPIC_BASE_URL",
				Value:       serpent.StringOf(&opts.anthropicBaseURL),
			},
			{
				Name:          "system",
				Description:   "The system prompt for the session. Empty disables it.",
				Flag:          "system",
				FlagShorthand: "s",
				Default:       defaultSystemPrompt,
				Env:           "AICHAT_SYSTEM_PROMPT",
				Value:         serpent.StringOf(&opts.systemPrompt),
			},
			{
				Name:        "max-tokens",
				Description: "Maximum number of tokens to generate per reply.",
				Flag:        "max-tokens",
				Default:     "1024",
				Env:         "AICHAT_MAX_TOKENS",
				Value:       serpent.Int64Of(&opts.maxTokens),
			},
			{
				Name:        "history-db",
				Description: "Path to an SQLite file that mirrors the conversation history.",
				Flag:        "history-db",
				Env:         "AICHAT_HISTORY_DB",
				Value:       serpent.StringOf(&opts.historyDB),
			},
			{
				Name:          "verbose",
				Description:   "Log diagnostics to stdout.",
				Flag:          "verbose",
				FlagShorthand: "v",
				Value:         serpent.BoolOf(&opts.verbose),
			},
		},
	}

	err := cmd.Invoke().WithOS().Run()
	if err != nil {
		var runCommandErr *serpent.RunCommandError
		if errors.As(err, &runCommandErr) {
			errorf("%s\n", runCommandErr.Err)
			os.Exit(1)
		}

		errorf("%s\n", err)
		os.Exit(1)
	}
}
