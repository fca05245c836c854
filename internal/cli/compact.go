package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/compact"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Merge duplicate and superseded memories",
		Long:  "Find memory pairs with high token overlap, ask the model whether they are duplicates, and merge them. Originals are soft-deleted, never erased.",
		Run:   runCompact,
	}
	cmd.Flags().Bool("dry-run", false, "Report would-be merges without changing anything")
	cmd.Flags().Float64("threshold", 0, "Jaccard similarity threshold, inclusive (default 0.3)")
	cmd.Flags().Int("limit", 0, "Max recent memories to scan (default 1000)")
	RootCmd.AddCommand(cmd)
}

func runCompact(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	limit, _ := cmd.Flags().GetInt("limit")
	if threshold <= 0 {
		threshold = cfg.Compact.Threshold
	}
	if limit <= 0 {
		limit = cfg.Compact.Limit
	}

	s := openStore(cfg)
	defer s.Close()

	engine := &compact.Engine{
		Store:     s,
		Model:     newCompleter(cfg),
		Logger:    newLogger(),
		Threshold: threshold,
		Limit:     limit,
		DryRun:    dryRun,
	}
	report, err := engine.Run(cmd.Context())
	if err != nil {
		exitErr("compact", err)
	}
	if report.Candidates == 0 {
		fmt.Println("No candidate pairs found above similarity threshold.")
		return
	}

	b, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(b))
}
