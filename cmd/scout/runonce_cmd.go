package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
	"pkt.systems/scout"
)

// run-once wraps a command in a cluster-wide lock so that cron jobs
// scheduled on every node run on exactly one of them.
func newRunOnceCommand(logger pslog.Logger) *cobra.Command {
	var (
		prefix   string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run-once <lock-name> -- <command> [args...]",
		Short: "Run a command under a cluster-wide lock",
		Args: func(c *cobra.Command, args []string) error {
			if len(args) < 2 {
				return &usageError{errors.New("run-once requires a lock name and a command")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()

			hostname, _ := os.Hostname()
			owner := hostname + "-" + xid.New().String()
			lock := cli.Lock()
			if prefix != "" {
				lock.SetPrefix(prefix)
			}

			ctx := cmd.Context()
			if err := lock.Acquire(ctx, args[0], owner); err != nil {
				if errors.Is(err, scout.ErrLockHeld) {
					return &exitCodeError{
						code:    exitFailure,
						message: fmt.Sprintf("lock %q is held elsewhere", args[0]),
					}
				}
				return err
			}
			defer lock.Release(ctx)

			lastRunKey := lock.Key() + "_last_run"
			now := time.Now()
			due, err := runOnceDue(ctx, cli.KV, lastRunKey, interval, now)
			if err != nil {
				return err
			}
			if !due {
				fmt.Fprintf(cmd.OutOrStdout(), "lock %q ran within the last %s, skipping\n", args[0], interval)
				return nil
			}
			if interval > 0 {
				if err := cli.KV.Set(ctx, lastRunKey, strconv.FormatInt(now.Unix(), 10)); err != nil {
					return err
				}
			}

			child := exec.CommandContext(ctx, args[1], args[2:]...)
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			if err := child.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return &exitCodeError{code: exitErr.ExitCode()}
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "lock-prefix", scout.DefaultLockPrefix, "key prefix the lock is created under")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "skip the run when the lock already ran within this window")
	return cmd
}

// runOnceDue reports whether the command should run, comparing the
// last-run timestamp recorded under key against the dedup interval.
// A missing or unreadable timestamp always allows the run.
func runOnceDue(ctx context.Context, kv *scout.KV, key string, interval time.Duration, now time.Time) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	value, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	last, ok := parseUnixSeconds(value)
	if !ok {
		return true, nil
	}
	return !last.Add(interval).After(now), nil
}

func parseUnixSeconds(value any) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	}
	return time.Time{}, false
}
