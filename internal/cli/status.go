package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show memory health and open threads",
		Run:   runStatus,
	}
	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	ctx := cmd.Context()
	stats, err := s.Stats(ctx)
	if err != nil {
		exitErr("stats", err)
	}

	fmt.Println("=== Hippo Status ===")
	fmt.Printf("  Memories:     %d live / %d total\n", stats.ActiveMemories, stats.TotalMemories)
	fmt.Printf("  Graph edges:  %d\n", stats.EdgeCount)
	fmt.Printf("  DB size:      %.1f MB\n", float64(stats.DBSizeBytes)/(1024*1024))

	if last, _ := s.GetMeta(ctx, "last_consolidated_at"); last != "" {
		fmt.Printf("  Last consolidation: %s\n", last)
	}

	memories, err := s.GetAll(ctx, 100, 0)
	if err != nil {
		exitErr("list", err)
	}

	deltaCount := 0
	for _, m := range memories {
		if m.MemoryType == model.TypeStateDelta {
			if deltaCount == 0 {
				printOpenThreads(m.Metadata)
			}
			deltaCount++
		}
	}
	fmt.Printf("  State deltas: %d\n", deltaCount)
}

func printOpenThreads(meta map[string]any) {
	threads, ok := meta["open_threads"].([]any)
	if !ok || len(threads) == 0 {
		return
	}
	fmt.Println("\n  Open threads (from last consolidation):")
	for _, t := range threads {
		fmt.Printf("    - %v\n", t)
	}
	fmt.Println()
}
