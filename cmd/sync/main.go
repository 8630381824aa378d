package main

import (
	"os"

	"podsync/internal/cli"
)

func main() {
	if err := cli.NewSyncCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
