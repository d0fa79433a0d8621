package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the trader CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trader version %s\n", version)
		fmt.Println("A candle-driven trading simulator with live reconciliation")
		fmt.Println("https://github.com/rustyeddy/candlebot")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
