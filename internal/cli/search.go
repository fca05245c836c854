package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <tag>",
		Short: "Find memories by tag substring",
		Long:  "Find memories whose tag string contains the given text. The match is a substring match inside tag names, not whole-tag.",
		Args:  cobra.ExactArgs(1),
		Run:   runSearch,
	}
	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	memories, err := s.SearchByTag(cmd.Context(), args[0])
	if err != nil {
		exitErr("search", err)
	}

	for _, m := range memories {
		b, _ := json.Marshal(m)
		fmt.Println(string(b))
	}
}
