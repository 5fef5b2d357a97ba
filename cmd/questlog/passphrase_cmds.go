package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/questlog/internal/credential"
	"github.com/nhle/questlog/internal/quest"
)

func newPassphraseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passphrase",
		Short: "Manage the passphrase required for game master roles",
	}

	// vault checks the acting user may manage the passphrase.
	vault := func() (*credential.Vault, error) {
		_, user, err := opts.loadConfig()
		if err != nil {
			return nil, err
		}
		if !user.IsGM() {
			return nil, fmt.Errorf("managing the passphrase: %w", quest.ErrForbidden)
		}
		if err := opts.checkPassphrase(user); err != nil {
			return nil, err
		}
		return opts.openVault(filepath.Dir(opts.configPath))
	}

	set := &cobra.Command{
		Use:   "set <new-passphrase>",
		Short: "Store a new passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vault()
			if err != nil {
				return err
			}
			if err := v.SetPassphrase(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "passphrase stored")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := vault()
			if err != nil {
				return err
			}
			if err := v.ClearPassphrase(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "passphrase cleared")
			return nil
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}
