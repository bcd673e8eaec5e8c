package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"
	"pkt.systems/scout"
)

// Exit codes: 1 for runtime and connection failures, 2 for usage errors.
// run-once propagates the wrapped command's own exit code.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func submain(ctx context.Context) int {
	baseLogger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("SCOUT_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(os.Stderr),
	).With("app", "scout")
	cmd := newRootCommand(baseLogger)
	ctx = withSignalCancel(ctx)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitFailure
		}
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			if exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func withSignalCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx
}

// usageError marks errors that should exit with the usage status.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCodeError carries an explicit exit status, used by run-once to
// propagate the wrapped command's result.
type exitCodeError struct {
	code    int
	message string
}

func (e *exitCodeError) Error() string { return e.message }

// exactArgs mirrors cobra.ExactArgs but marks the failure as a usage
// error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{fmt.Errorf("%s requires %d argument(s), got %d", cmd.Name(), n, len(args))}
		}
		return nil
	}
}

// maxArgs mirrors cobra.MaximumNArgs but marks the failure as a usage
// error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return &usageError{fmt.Errorf("%s takes at most %d argument(s), got %d", cmd.Name(), n, len(args))}
		}
		return nil
	}
}

func newRootCommand(baseLogger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scout",
		Short:         "Command line client for the discovery and configuration API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.PersistentFlags()
	flags.String("api-addr", "", "full API base URL (http://host:port or unix:///path), overrides scheme/host/port")
	flags.String("api-scheme", scout.DefaultScheme, "API scheme (http or https)")
	flags.String("api-host", scout.DefaultHost, "API host")
	flags.Int("api-port", scout.DefaultPort, "API port")
	flags.String("datacenter", "", "datacenter to address")
	flags.String("token", "", "API access token")
	flags.Duration("timeout", scout.DefaultTimeout, "per-request timeout")

	mustBindFlag("api-addr", scout.EnvHTTPAddr, flags.Lookup("api-addr"))
	mustBindFlag("api-scheme", "SCOUT_SCHEME", flags.Lookup("api-scheme"))
	mustBindFlag("api-host", scout.EnvHost, flags.Lookup("api-host"))
	mustBindFlag("api-port", scout.EnvPort, flags.Lookup("api-port"))
	mustBindFlag("datacenter", scout.EnvDatacenter, flags.Lookup("datacenter"))
	mustBindFlag("token", scout.EnvToken, flags.Lookup("token"))
	mustBindFlag("timeout", "SCOUT_TIMEOUT", flags.Lookup("timeout"))

	cmd.AddCommand(
		newKVCommand(baseLogger),
		newServiceCommand(baseLogger),
		newACLCommand(baseLogger),
		newRunOnceCommand(baseLogger),
	)
	return cmd
}

func mustBindFlag(key, env string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("flag for key %s not found", key))
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
	if env != "" {
		if err := viper.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

// newClient builds the API client from the bound flag and environment
// values.
func newClient(logger pslog.Logger) (*scout.Client, error) {
	cfg := scout.Config{
		Address:    viper.GetString("api-addr"),
		Scheme:     viper.GetString("api-scheme"),
		Host:       viper.GetString("api-host"),
		Port:       viper.GetInt("api-port"),
		Datacenter: viper.GetString("datacenter"),
		Token:      viper.GetString("token"),
		Timeout:    viper.GetDuration("timeout"),
	}
	return scout.New(cfg, scout.WithLogger(logger))
}

// commandContext bounds one-shot CLI operations so a stalled server never
// hangs the process.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
