package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/model"
	"github.com/rcliao/hippo/internal/scoring"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank memories by composite retrieval score",
		Long:  "Score live memories by weighted similarity, recency decay and access frequency. Similarity comes from an external embedder via --sim-file (hash to score JSON); without it ranking uses recency and access only.",
		Run:   runRank,
	}
	cmd.Flags().String("sim-file", "", "JSON file mapping content hashes to cosine similarities")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	RootCmd.AddCommand(cmd)
}

func runRank(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	simFile, _ := cmd.Flags().GetString("sim-file")
	limit, _ := cmd.Flags().GetInt("limit")

	sims := map[string]float64{}
	if simFile != "" {
		b, err := os.ReadFile(simFile)
		if err != nil {
			exitErr("read sim file", err)
		}
		if err := json.Unmarshal(b, &sims); err != nil {
			exitErr("parse sim file", err)
		}
	}

	s := openStore(cfg)
	defer s.Close()

	memories, err := s.GetAll(cmd.Context(), 1000, 0)
	if err != nil {
		exitErr("rank", err)
	}

	ranked := scoring.Rank(memories, func(m model.Memory) float64 {
		return sims[m.ContentHash]
	}, cfg.Scoring, time.Now().UTC())

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for _, r := range ranked {
		b, _ := json.Marshal(map[string]any{
			"score":        r.Score,
			"content_hash": r.Memory.ContentHash,
			"content":      r.Memory.Content,
		})
		fmt.Println(string(b))
	}
}
