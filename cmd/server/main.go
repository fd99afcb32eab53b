// Package main is the entry point for the game master server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gm-api",
	Short: "AI game master server",
	Long:  `gm-api runs the AI-narrated tabletop server: players declare actions over websocket, an AI judge sets difficulties, dice resolve outcomes, and a narrator streams the round's story back to the room.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
