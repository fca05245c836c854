package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <content-hash>",
		Short: "Fetch a memory by content hash",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}
	cmd.Flags().Bool("deleted", false, "Include soft-deleted records (audit lookup)")
	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	includeDeleted, _ := cmd.Flags().GetBool("deleted")

	s := openStore(cfg)
	defer s.Close()

	var m *model.Memory
	var err error
	if includeDeleted {
		m, err = s.GetByHashAny(cmd.Context(), args[0])
	} else {
		m, err = s.GetByHash(cmd.Context(), args[0])
	}
	if err != nil {
		exitErr("get", err)
	}
	if m == nil {
		exitErr("get", fmt.Errorf("memory not found: %s", args[0]))
	}

	b, _ := json.MarshalIndent(m, "", "  ")
	fmt.Println(string(b))
}
