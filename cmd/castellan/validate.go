package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"castellan-hq/castellan/pkg/storage"
)

var validateFlags struct {
	driver  string
	version string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that policy files decode cleanly",
	Long: `Decode every policy file for the selected driver and report the result
per file.

Files that fail to decode are not an error at runtime: repositories treat
them as empty rather than failing the evaluation path. This command exists so
an operator can find out about a corrupted file before the engine silently
reads it as zero rules.

Examples:
  # Validate the latest version of the yaml policy set
  castellan validate --base ./storage --driver yaml

  # Validate a pinned version
  castellan validate --base ./storage --driver json --policy-version 1.0.0`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.driver, "driver", "d", "json", "storage driver (json, yaml, xml, toml, serialized)")
	validateCmd.Flags().StringVar(&validateFlags.version, "policy-version", "", "pin a policy version (default: latest)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	driver, err := storage.ParseDriver(validateFlags.driver)
	if err != nil {
		return err
	}
	cdc, err := driver.Codec()
	if err != nil {
		return err
	}

	dir, err := resolvePoliciesDir(basePath, validateFlags.version)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("no policies directory at %s\n", dir)
			return nil
		}
		return err
	}

	suffix := "." + cdc.Extension()
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Printf("no %s files under %s\n", suffix, dir)
		return nil
	}

	invalid := 0
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		records, ok := cdc.Decode(data)
		switch {
		case !ok:
			fmt.Printf("INVALID  %s (will be read as empty)\n", name)
			invalid++
		case len(records) == 0:
			fmt.Printf("EMPTY    %s\n", name)
		default:
			fmt.Printf("OK       %s (%d rules)\n", name, len(records))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files failed to decode", invalid, len(names))
	}
	return nil
}

// resolvePoliciesDir mirrors the repository's version resolution for CLI use:
// explicit version, else latest detected, else the unversioned directory.
func resolvePoliciesDir(base, version string) (string, error) {
	if version != "" {
		return filepath.Join(base, "policies", version), nil
	}

	versions, err := storage.ListVersions(base)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return filepath.Join(base, "policies"), nil
	}
	return filepath.Join(base, "policies", versions[len(versions)-1]), nil
}
