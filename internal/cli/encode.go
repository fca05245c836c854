package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/encoder"
)

func init() {
	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Convert English facts into symbolic notation",
		Long:  "Compress a fact, or a file of facts (one per line), into symbolic notation and pack the results into fixed-capacity slots.",
		Run:   runEncode,
	}
	cmd.Flags().String("file", "", "Encode facts from a text file (one per line)")
	cmd.Flags().StringP("output", "o", "", "Write encoded output to file")
	cmd.Flags().String("domain", "", "Domain shortcode prefix (e.g. Wb, Fin)")
	RootCmd.AddCommand(cmd)
}

func runEncode(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	inputFile, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	domain, _ := cmd.Flags().GetString("domain")

	completer := newCompleter(cfg)
	ctx := cmd.Context()

	var facts []string
	switch {
	case len(args) > 0:
		facts = []string{strings.Join(args, " ")}
	case inputFile != "":
		b, err := os.ReadFile(inputFile)
		if err != nil {
			exitErr("read facts", err)
		}
		for _, line := range strings.Split(string(b), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				facts = append(facts, line)
			}
		}
	default:
		exitErr("encode", fmt.Errorf("provide text to encode or use --file"))
	}

	var encoded []string
	for i, fact := range facts {
		enc, err := encoder.EncodeFact(ctx, completer, fact)
		if err != nil {
			exitErr("encode", err)
		}
		if domain != "" && !strings.HasPrefix(enc, domain+":") {
			enc = domain + ":" + enc
		}
		encoded = append(encoded, enc)
		if len(facts) == 1 {
			fmt.Printf("Original:  %s\nEncoded:   %s\nSavings:   %d -> %d chars\n",
				fact, enc, len(fact), len(enc))
		} else {
			fmt.Printf("  [%d/%d] %s\n", i+1, len(facts), enc)
		}
	}

	result := strings.Join(encoded, "\n")
	if len(facts) > 1 {
		slots := encoder.PackSlots(encoded, encoder.SlotCapacity)
		fmt.Printf("\nPacked into %d slots.\n", len(slots))
		result = strings.Join(slots, "\n")
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(result), 0o644); err != nil {
			exitErr("write output", err)
		}
		fmt.Printf("Written to %s\n", output)
	}
}
