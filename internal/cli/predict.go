package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/predict"
)

func init() {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Generate a PRELOAD briefing for the next session",
		Run:   runPredict,
	}
	cmd.Flags().StringP("output", "o", "PRELOAD.md", "Output path for the briefing")
	cmd.Flags().String("log", "", "Session log path (default: config session_log)")
	cmd.Flags().String("open-questions", "", "Open questions file to include")
	RootCmd.AddCommand(cmd)
}

func runPredict(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	output, _ := cmd.Flags().GetString("output")
	logPath, _ := cmd.Flags().GetString("log")
	oqPath, _ := cmd.Flags().GetString("open-questions")
	if logPath == "" {
		logPath = cfg.SessionLog
	}

	logText, _ := os.ReadFile(logPath)
	var oqText []byte
	if oqPath != "" {
		oqText, _ = os.ReadFile(oqPath)
	}

	s := openStore(cfg)
	defer s.Close()

	p := &predict.Predictor{Store: s, Model: newCompleter(cfg)}
	briefing, err := p.Briefing(cmd.Context(), string(logText), string(oqText))
	if err != nil {
		exitErr("predict", err)
	}

	if err := os.WriteFile(output, []byte(briefing), 0o644); err != nil {
		exitErr("write briefing", err)
	}
	fmt.Printf("Briefing written to %s (%d chars)\n", output, len(briefing))
}
