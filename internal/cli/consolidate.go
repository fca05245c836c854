package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/consolidate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Compress the latest session into a state delta memory",
		Long:  "Read the latest session from the session log, generate a state delta via the configured model, and store it with entity tags.",
		Run:   runConsolidate,
	}
	cmd.Flags().String("log", "", "Session log path (default: config session_log)")
	RootCmd.AddCommand(cmd)
}

func runConsolidate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logPath, _ := cmd.Flags().GetString("log")
	if logPath == "" {
		logPath = cfg.SessionLog
	}

	logText, err := os.ReadFile(logPath)
	if err != nil {
		exitErr("read session log", err)
	}

	s := openStore(cfg)
	defer s.Close()

	p := &consolidate.Pipeline{Store: s, Model: newCompleter(cfg), Logger: newLogger()}
	outcome, err := p.Consolidate(cmd.Context(), string(logText))
	if err != nil {
		exitErr("consolidate", err)
	}
	if outcome == nil {
		fmt.Println("No session found in log. Nothing to consolidate.")
		return
	}

	b, _ := json.MarshalIndent(outcome, "", "  ")
	fmt.Println(string(b))
}
