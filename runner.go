package postip

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
)

// Run parses command line args and runs the agent until interrupted.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := options.Load(ctx, afs.New()); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: options.Level()}))
	slog.SetDefault(logger)
	agent, err := New(ctx, options, WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("starting", "scopes", agent.Paths().Scopes, "token", agent.Paths().Token, "interval", options.PollInterval)
	return agent.Run(ctx)
}
