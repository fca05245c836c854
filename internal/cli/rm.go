package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <content-hash>",
		Short: "Soft-delete a memory",
		Long:  "Mark a memory deleted. The record stays in the database for audit and undo; there is no hard delete.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}
	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	if err := s.SoftDelete(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Printf("Soft-deleted %s\n", args[0])
}
