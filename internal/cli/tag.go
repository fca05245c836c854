package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/tagger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Entity-tag memories using the model",
		Long:  "Extract entities from memory content and merge them into the tag set. Use --hash for one memory or --all for every under-tagged memory.",
		Run:   runTag,
	}
	cmd.Flags().String("hash", "", "Tag a specific memory by content hash")
	cmd.Flags().Bool("all", false, "Tag all under-tagged memories")
	RootCmd.AddCommand(cmd)
}

func runTag(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	hash, _ := cmd.Flags().GetString("hash")
	all, _ := cmd.Flags().GetBool("all")

	if hash == "" && !all {
		exitErr("tag", fmt.Errorf("specify --hash <hash> or --all"))
	}

	s := openStore(cfg)
	defer s.Close()

	t := &tagger.Tagger{Store: s, Model: newCompleter(cfg), Logger: newLogger()}

	if hash != "" {
		tags, err := t.TagOne(cmd.Context(), hash)
		if err != nil {
			exitErr("tag", err)
		}
		b, _ := json.Marshal(map[string]any{"content_hash": hash, "tags": tags})
		fmt.Println(string(b))
		return
	}

	tagged, err := t.TagAll(cmd.Context())
	if err != nil {
		exitErr("tag", err)
	}
	fmt.Printf("Tagged %d memories.\n", tagged)
}
