package main

import (
	"os"

	"github.com/rcliao/hippo/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
