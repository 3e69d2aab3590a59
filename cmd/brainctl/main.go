package main

import (
	"fmt"
	"os"

	"github.com/benvon/second-brain/cmd/brainctl/commands"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
