package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link <source-hash> <target-hash>",
		Short: "Add a graph edge between two memories",
		Long:  "Insert a weighted edge into the memory graph. Inserting an existing pair is a no-op; the first write wins.",
		Args:  cobra.ExactArgs(2),
		Run:   runLink,
	}
	cmd.Flags().Float64("similarity", 0, "Similarity weight in [0,1], from an external embedder")
	cmd.Flags().String("rel", "related", "Relationship type")
	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	sim, _ := cmd.Flags().GetFloat64("similarity")
	rel, _ := cmd.Flags().GetString("rel")

	s := openStore(cfg)
	defer s.Close()

	err := s.StoreEdge(cmd.Context(), store.EdgeParams{
		SourceHash:       args[0],
		TargetHash:       args[1],
		Similarity:       sim,
		RelationshipType: rel,
	})
	if err != nil {
		exitErr("link", err)
	}
	fmt.Printf("Linked %s -> %s (%s)\n", args[0], args[1], rel)
}
