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
		Use:   "reflect",
		Short: "Preview a state delta without storing it",
		Run:   runReflect,
	}
	cmd.Flags().String("log", "", "Session log path (default: config session_log)")
	RootCmd.AddCommand(cmd)
}

func runReflect(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logPath, _ := cmd.Flags().GetString("log")
	if logPath == "" {
		logPath = cfg.SessionLog
	}

	logText, err := os.ReadFile(logPath)
	if err != nil {
		exitErr("read session log", err)
	}

	p := &consolidate.Pipeline{Model: newCompleter(cfg)}
	digest, err := p.Reflect(cmd.Context(), string(logText))
	if err != nil {
		exitErr("reflect", err)
	}
	if digest == nil {
		fmt.Println("No session found in log.")
		return
	}

	b, _ := json.MarshalIndent(digest, "", "  ")
	fmt.Println(string(b))
	fmt.Fprintln(os.Stderr, "(dry run — nothing stored)")
}
