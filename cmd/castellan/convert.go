package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"castellan-hq/castellan/pkg/config"
	"castellan-hq/castellan/pkg/policy"
	"castellan-hq/castellan/pkg/storage"
)

var convertFlags struct {
	from     string
	to       string
	version  string
	fileMode string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Re-encode a policy set from one driver to another",
	Long: `Read the full rule sequence through the source driver and write it back
through the target driver, next to the source files. Rule order is preserved.

Examples:
  # Convert the latest json policy set to toml
  castellan convert --base ./storage --from json --to toml

  # Convert a pinned version, merging multi-file fragments
  castellan convert --base ./storage --from yaml --to serialized \
    --file-mode multiple --policy-version 2.0.0`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertFlags.from, "from", "", "source driver (required)")
	convertCmd.Flags().StringVar(&convertFlags.to, "to", "", "target driver (required)")
	convertCmd.Flags().StringVar(&convertFlags.version, "policy-version", "", "pin a policy version (default: latest)")
	convertCmd.Flags().StringVar(&convertFlags.fileMode, "file-mode", "single", "source file layout (single, multiple)")
	convertCmd.MarkFlagRequired("from")
	convertCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	from, err := storage.ParseDriver(convertFlags.from)
	if err != nil {
		return err
	}
	to, err := storage.ParseDriver(convertFlags.to)
	if err != nil {
		return err
	}
	if from == storage.DriverDatabase || to == storage.DriverDatabase {
		return fmt.Errorf("convert only works between file-backed drivers")
	}

	mgr, err := storage.NewManager(&config.StorageConfig{
		BasePath:    basePath,
		Driver:      string(from),
		FileMode:    convertFlags.fileMode,
		Version:     convertFlags.version,
		Versioning:  true,
		MaxFileSize: config.DefaultMaxFileSize,
	}, storage.NewFactory(nil, nil), nil)
	if err != nil {
		return err
	}

	source, err := mgr.Policy()
	if err != nil {
		return err
	}
	srcRepo, ok := source.(*storage.FileRepository)
	if !ok {
		return fmt.Errorf("source repository is not file-backed")
	}

	records, err := srcRepo.All()
	if err != nil {
		return err
	}

	rules := make([]policy.Rule, 0, len(records))
	for _, rec := range records {
		rules = append(rules, policy.Rule{
			Subject:  rec.Subject,
			Resource: rec.Resource,
			Action:   rec.Action,
			Effect:   policy.Effect(rec.Effect),
			Priority: policy.Priority(rec.Priority),
			Domain:   rec.Domain,
		})
	}

	target, err := mgr.Driver(to).FileMode(storage.FileModeSingle).Policy()
	if err != nil {
		return err
	}
	if err := target.Save(policy.NewPolicy(rules)); err != nil {
		return err
	}

	tgtRepo, ok := target.(*storage.FileRepository)
	if !ok {
		return fmt.Errorf("target repository is not file-backed")
	}
	fmt.Printf("wrote %d rules to %s\n", len(rules), tgtRepo.Dir())
	return nil
}
