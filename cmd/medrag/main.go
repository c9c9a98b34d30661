package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rohzzn/medical-rag/internal/api"
	"github.com/rohzzn/medical-rag/internal/config"
	"github.com/rohzzn/medical-rag/internal/session"
	"github.com/rohzzn/medical-rag/internal/ui"
)

var (
	cfg        config.AppConfig
	apiURLFlag string
)

var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "Terminal client for the Medical RAG assistant",
	Long: `medrag is a terminal client for the Medical RAG document
question-answering service. Running it with no arguments opens the chat
interface; subcommands manage the session and configuration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if apiURLFlag != "" {
			cfg.APIBaseURL = apiURLFlag
		}
		setupLogging(cfg.LogLevel)
		return nil
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend API base URL (overrides MEDRAG_API_URL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(levelName string) {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openStore() (*session.Store, error) {
	store, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.APIBaseURL, store)
	user, err := client.Me(cmd.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			return errors.New("not logged in: run `medrag login <email>` first")
		}
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) && reqErr.Status == 401 {
			_ = store.Clear()
			return errors.New("session rejected by the server: run `medrag login <email>` again")
		}
		return fmt.Errorf("verify session: %w", err)
	}

	slog.Debug("starting chat ui", "user", user.Email, "api_url", cfg.APIBaseURL)

	p := tea.NewProgram(ui.NewModel(cfg, client, user), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
