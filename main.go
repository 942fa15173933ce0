package main

import (
	"github.com/joho/godotenv"

	"github.com/meetwise/meetwise/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
