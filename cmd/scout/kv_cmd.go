package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

func newKVCommand(logger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Work with the key/value store",
	}
	cmd.AddCommand(
		newKVBackupCommand(logger),
		newKVRestoreCommand(logger),
		newKVListCommand(logger),
		newKVGetCommand(logger),
		newKVSetCommand(logger),
		newKVRemoveCommand(logger),
		newKVMkdirCommand(logger),
	)
	return cmd
}

// backupRecord is one row of a kv backup file.
type backupRecord struct {
	Key   string `json:"Key" yaml:"Key"`
	Flags uint64 `json:"Flags" yaml:"Flags"`
	Value string `json:"Value" yaml:"Value"`
}

func newKVBackupCommand(logger pslog.Logger) *cobra.Command {
	var (
		file      string
		format    string
		useBase64 bool
		pretty    bool
	)
	cmd := &cobra.Command{
		Use:   "backup [prefix]",
		Short: "Dump keys and values to a file or stdout",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			rows, err := cli.KV.Records(ctx, prefix)
			if err != nil {
				return err
			}
			records := make([]backupRecord, 0, len(rows))
			for i := range rows {
				value := string(rows[i].Value)
				if useBase64 {
					value = base64.StdEncoding.EncodeToString(rows[i].Value)
				}
				records = append(records, backupRecord{
					Key:   rows[i].Key,
					Flags: rows[i].Flags,
					Value: value,
				})
			}
			data, err := marshalRecords(records, format, pretty)
			if err != nil {
				return err
			}
			return writeOutput(file, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "write to file instead of stdout")
	flags.StringVar(&format, "format", "json", "output format (json or yaml)")
	flags.BoolVar(&useBase64, "base64", false, "base64-encode values")
	flags.BoolVar(&pretty, "pretty", false, "indent json output")
	return cmd
}

func newKVRestoreCommand(logger pslog.Logger) *cobra.Command {
	var (
		file      string
		format    string
		useBase64 bool
		noReplace bool
	)
	cmd := &cobra.Command{
		Use:   "restore [prefix]",
		Short: "Load keys and values from a backup file",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}
			records, err := unmarshalRecords(data, format)
			if err != nil {
				return err
			}
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			prefix := ""
			if len(args) == 1 {
				prefix = strings.TrimRight(args[0], "/") + "/"
			}
			for _, record := range records {
				value := []byte(record.Value)
				if useBase64 {
					decoded, err := base64.StdEncoding.DecodeString(record.Value)
					if err != nil {
						return fmt.Errorf("decode value for %q: %w", record.Key, err)
					}
					value = decoded
				}
				key := prefix + strings.TrimLeft(record.Key, "/")
				if err := cli.KV.SetRecord(ctx, key, record.Flags, value, !noReplace); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d key(s)\n", len(records))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "read from file instead of stdin")
	flags.StringVar(&format, "format", "json", "input format (json or yaml)")
	flags.BoolVar(&useBase64, "base64", false, "values in the backup are base64-encoded")
	flags.BoolVar(&noReplace, "no-replace", false, "do not overwrite keys that already exist")
	return cmd
}

func newKVListCommand(logger pslog.Logger) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:     "ls [prefix]",
		Aliases: []string{"list"},
		Short:   "List keys",
		Args:    maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			rows, err := cli.KV.Records(ctx, prefix)
			if err != nil {
				return err
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
			out := cmd.OutOrStdout()
			for i := range rows {
				if long {
					size := humanize.Bytes(uint64(len(rows[i].Value)))
					fmt.Fprintf(out, "%10s %s\n", size, rows[i].Key)
				} else {
					fmt.Fprintln(out, rows[i].Key)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show value sizes")
	return cmd
}

func newKVGetCommand(logger pslog.Logger) *cobra.Command {
	var (
		recurse bool
		trim    int
	)
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			out := cmd.OutOrStdout()
			if recurse {
				found, err := cli.KV.Find(ctx, args[0])
				if err != nil {
					return err
				}
				keys := make([]string, 0, len(found))
				for key := range found {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(out, "%s\t%s\n", trimKey(key, trim), formatValue(found[key]))
				}
				return nil
			}
			value, err := cli.KV.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatValue(value))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&recurse, "recurse", "r", false, "get every key prefixed with the given key")
	flags.IntVarP(&trim, "trim", "t", 0, "number of leading key segments to trim from displayed keys")
	return cmd
}

// trimKey drops the first trim path segments from a displayed key. When
// trim swallows the whole key only the final segment remains.
func trimKey(key string, trim int) string {
	if trim <= 0 {
		return key
	}
	parts := strings.Split(key, "/")
	if trim >= len(parts) {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[trim:], "/")
}

func newKVSetCommand(logger pslog.Logger) *cobra.Command {
	var flagsValue uint64
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value under a key",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			if cmd.Flags().Changed("flags") {
				return cli.KV.SetRecord(ctx, args[0], flagsValue, args[1], true)
			}
			return cli.KV.Set(ctx, args[0], args[1])
		},
	}
	cmd.Flags().Uint64Var(&flagsValue, "flags", 0, "opaque flags value to store with the key")
	return cmd
}

func newKVRemoveCommand(logger pslog.Logger) *cobra.Command {
	var recurse bool
	cmd := &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"del"},
		Short:   "Remove a key",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			return cli.KV.Delete(ctx, args[0], recurse)
		},
	}
	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "remove everything under the key as a prefix")
	return cmd
}

func newKVMkdirCommand(logger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder key",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			path := strings.TrimRight(args[0], "/") + "/"
			return cli.KV.Set(ctx, path, nil)
		},
	}
	return cmd
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := marshalPrettyJSON(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func writeOutput(file string, data []byte) error {
	if file == "" || file == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return readAllStdin()
	}
	return os.ReadFile(file)
}
