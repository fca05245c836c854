package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/encoder"
)

func init() {
	slots := &cobra.Command{
		Use:   "slots",
		Short: "Manage symbolic memory slot allocation",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show current slot allocation and capacity",
		Run:   runSlotsStatus,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an empty slot allocation",
		Run:   runSlotsInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing allocation")

	fill := &cobra.Command{
		Use:   "fill <facts-file>",
		Short: "Pack encoded facts from a file into empty slots",
		Args:  cobra.ExactArgs(1),
		Run:   runSlotsFill,
	}

	slots.AddCommand(status, initCmd, fill)
	RootCmd.AddCommand(slots)
}

func slotsPath() string {
	cfg := loadConfig()
	return filepath.Join(filepath.Dir(cfg.DBPath), "slots.json")
}

func runSlotsStatus(cmd *cobra.Command, args []string) {
	alloc, err := encoder.LoadAllocation(slotsPath())
	if err != nil {
		exitErr("load slots", err)
	}
	if alloc == nil {
		fmt.Println("No slot allocation found. Run 'hippo slots init'.")
		return
	}
	fmt.Print(alloc.FormatStatus())
}

func runSlotsInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	path := slotsPath()

	if _, err := os.Stat(path); err == nil && !force {
		exitErr("init", fmt.Errorf("allocation already exists at %s (use --force)", path))
	}

	alloc := encoder.NewAllocation()
	if err := alloc.Save(path); err != nil {
		exitErr("save slots", err)
	}
	fmt.Printf("Slot allocation initialized at %s\n", path)
}

func runSlotsFill(cmd *cobra.Command, args []string) {
	path := slotsPath()
	alloc, err := encoder.LoadAllocation(path)
	if err != nil {
		exitErr("load slots", err)
	}
	if alloc == nil {
		alloc = encoder.NewAllocation()
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read facts", err)
	}
	var facts []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			facts = append(facts, line)
		}
	}

	packed := encoder.PackSlots(facts, alloc.Capacity)
	placed := alloc.Fill(packed)
	if err := alloc.Save(path); err != nil {
		exitErr("save slots", err)
	}

	fmt.Printf("Placed %d/%d packed slots.\n", placed, len(packed))
	fmt.Print(alloc.FormatStatus())
}
