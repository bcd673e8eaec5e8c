package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"
	"pkt.systems/scout"
)

func newACLCommand(logger pslog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acl",
		Short: "Back up and restore access control tokens",
	}
	cmd.AddCommand(
		newACLBackupCommand(logger),
		newACLRestoreCommand(logger),
	)
	return cmd
}

func newACLBackupCommand(logger pslog.Logger) *cobra.Command {
	var (
		file   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump all tokens to a file or stdout",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			tokens, err := cli.ACL.List(ctx)
			if err != nil {
				return err
			}
			var data []byte
			if pretty {
				data, err = json.MarshalIndent(tokens, "", "  ")
			} else {
				data, err = json.Marshal(tokens)
			}
			if err != nil {
				return err
			}
			return writeOutput(file, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "write to file instead of stdout")
	flags.BoolVar(&pretty, "pretty", false, "indent json output")
	return cmd
}

// aclBackupToken is one row of an acl backup file.
type aclBackupToken struct {
	ID    string `json:"ID"`
	Name  string `json:"Name"`
	Type  string `json:"Type"`
	Rules string `json:"Rules"`
}

func newACLRestoreCommand(logger pslog.Logger) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Load tokens from a backup file",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}
			var tokens []aclBackupToken
			if err := json.Unmarshal(data, &tokens); err != nil {
				return fmt.Errorf("parse backup: %w", scout.ErrACLFormat)
			}
			cli, err := newClient(logger)
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := commandContext(cmd)
			defer cancel()
			for _, token := range tokens {
				if token.Type == "" {
					return fmt.Errorf("token %q missing type: %w", token.Name, scout.ErrACLFormat)
				}
				restored := false
				if token.ID != "" {
					existing, err := cli.ACL.Info(ctx, token.ID)
					if err != nil {
						return err
					}
					if existing != nil {
						if _, err := cli.ACL.Update(ctx, token.ID, token.Name, token.Type, token.Rules); err != nil {
							return err
						}
						restored = true
					}
				}
				if !restored {
					if _, err := cli.ACL.Create(ctx, token.Name, token.Type, token.Rules); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d token(s)\n", len(tokens))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read from file instead of stdin")
	return cmd
}
