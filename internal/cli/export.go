package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all records as newline-delimited JSON",
		Long:  "Dump every record including soft-deleted rows for audit or backup. Filter by memory type with --type.",
		Run:   runExport,
	}
	cmd.Flags().String("type", "", "Filter by memory type")
	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	memType, _ := cmd.Flags().GetString("type")

	s := openStore(cfg)
	defer s.Close()

	memories, err := s.ExportAll(cmd.Context(), memType)
	if err != nil {
		exitErr("export", err)
	}

	for _, m := range memories {
		b, _ := json.Marshal(m)
		fmt.Println(string(b))
	}
}
