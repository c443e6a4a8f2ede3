package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xacademy/academy"
	"github.com/0xacademy/academy/adapters/notify"
	"github.com/0xacademy/academy/internal/config"
)

var errNotSignedIn = errors.New("not signed in, run `academy login` first")

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "academy",
	Short: "0xAcademy command line client",
	Long: `Sign in to 0xAcademy with an Ethereum key, browse and enroll in courses,
and upload lesson videos as an instructor.

Settings are read from ACADEMY_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.NewLogger()
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// openClient builds the client and revalidates any stored session
func openClient(cmd *cobra.Command) (*academy.Client, error) {
	c, err := academy.New(cmd.Context(), cfg,
		academy.WithLogger(logger),
		academy.WithNotifier(notify.NewConsole(cmd.ErrOrStderr(), nil)),
	)
	if err != nil {
		return nil, err
	}
	if _, err := c.Start(cmd.Context()); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// signedIn is openClient for commands that need an authenticated session
func signedIn(cmd *cobra.Command) (*academy.Client, error) {
	c, err := openClient(cmd)
	if err != nil {
		return nil, err
	}
	if !c.Session().IsAuthenticated() {
		c.Close()
		return nil, errNotSignedIn
	}
	return c, nil
}
