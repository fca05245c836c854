package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, most recent first",
		Run:   runList,
	}
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Int("offset", 0, "Pagination offset")
	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	s := openStore(cfg)
	defer s.Close()

	memories, err := s.GetAll(cmd.Context(), limit, offset)
	if err != nil {
		exitErr("list", err)
	}

	for _, m := range memories {
		b, _ := json.Marshal(m)
		fmt.Println(string(b))
	}
}
