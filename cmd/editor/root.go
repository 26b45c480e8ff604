package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resumeEditor/internal/client"
	"resumeEditor/internal/config"
)

type app struct {
	cfg    config.EditorConfig
	api    *client.Client
	logger *slog.Logger
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

var rootCmd = &cobra.Command{
	Use:   "editor",
	Short: "Headless resume editing session against the persistence API",
	Long: `editor loads a resume from the persistence API, applies editing actions
read as JSON lines, and keeps the server copy in sync through the same
auto-save and remote sync stages an interactive client uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		editorCfg := cfg.Editor
		if v, _ := cmd.Flags().GetString("api"); v != "" {
			editorCfg.APIBaseURL = v
		}
		if v, _ := cmd.Flags().GetString("token"); v != "" {
			editorCfg.APIToken = v
		}

		level := slog.LevelWarn
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		a := &app{
			cfg:    editorCfg,
			api:    client.New(editorCfg.APIBaseURL, client.WithToken(editorCfg.APIToken)),
			logger: logger,
		}
		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "API base URL (default EDITOR_API_BASE_URL)")
	rootCmd.PersistentFlags().String("token", "", "bearer token (default EDITOR_API_TOKEN)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log save and sync activity")

	rootCmd.AddCommand(newCmd, listCmd, sessionCmd, shareCmd, openCmd, exportCmd)
}

// Execute runs the root command; SIGINT cancels the session context so a
// running session still flushes before exiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		stop()
		os.Exit(1)
	}
}
