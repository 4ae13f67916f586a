package main

import (
	"os"

	"github.com/mkrein/tradegate/cmd/tradegate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
