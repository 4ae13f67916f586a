package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradegate CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradegate version %s\n", version)
		fmt.Println("An adaptive order-admission and market-decision engine")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
