package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"castellan-hq/castellan/pkg/storage"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List detected policy versions",
	Long: `List the semantic version directories under <base>/policies/, in
ascending order, and mark the one auto-detection would pick.

Directories whose names do not parse as a semantic version are ignored, the
same way the repository ignores them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := storage.ListVersions(basePath)
		if err != nil {
			return err
		}

		if len(versions) == 0 {
			fmt.Println("no version directories found; policies are read unversioned")
			return nil
		}

		for i, v := range versions {
			if i == len(versions)-1 {
				fmt.Printf("%s  (latest)\n", v)
			} else {
				fmt.Println(v)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
