package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"castellan-hq/castellan/pkg/storage/delegation"
)

var delegationsCmd = &cobra.Command{
	Use:   "delegations",
	Short: "Inspect and manage delegation records",
}

var delegationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List delegation records",
	Long: `List every delegation record with its effective state at the current
time. A record past its expiry shows as expired even though the stored
status still reads active; expiry is derived at read time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := delegationStore()
		all, err := store.List()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("no delegations")
			return nil
		}

		now := time.Now()
		for _, d := range all {
			expiry := "never"
			if d.ExpiresAt != nil {
				expiry = d.ExpiresAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  %s -> %s  state=%s  expires=%s\n",
				d.ID, d.DelegatorID, d.DelegateID, d.EffectiveState(now), expiry)
		}
		return nil
	},
}

var delegationsRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke a delegation",
	Long: `Mark the stored delegation record revoked. Revoking an unknown id is a
no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := delegationStore()
		if err := store.Revoke(args[0]); err != nil {
			return err
		}
		fmt.Printf("revoked %s\n", args[0])
		return nil
	},
}

func delegationStore() *delegation.FileStore {
	return delegation.NewFileStore(filepath.Join(basePath, "delegations"), nil, nil)
}

func init() {
	delegationsCmd.AddCommand(delegationsListCmd)
	delegationsCmd.AddCommand(delegationsRevokeCmd)
	rootCmd.AddCommand(delegationsCmd)
}
