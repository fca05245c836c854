package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store a memory",
		Long:  "Store a memory. Content can be a positional arg or piped via stdin.",
		Run:   runPut,
	}
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().String("type", model.TypeNote, "Memory type (note, observation, state_delta, ...)")
	cmd.Flags().String("meta", "", "JSON metadata")
	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	tagsStr, _ := cmd.Flags().GetString("tags")
	memType, _ := cmd.Flags().GetString("type")
	metaStr, _ := cmd.Flags().GetString("meta")

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("put", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	var meta map[string]any
	if metaStr != "" {
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			exitErr("parse metadata", err)
		}
	}

	s := openStore(cfg)
	defer s.Close()

	mem := &model.Memory{
		Content:    strings.TrimSpace(content),
		Tags:       model.SplitTags(tagsStr),
		MemoryType: memType,
		Metadata:   meta,
	}
	if _, err := s.StoreMemory(cmd.Context(), mem); err != nil {
		exitErr("put", err)
	}

	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}
