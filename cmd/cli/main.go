package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-recon/internal/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
