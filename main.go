package main

import "github.com/buildgen-dev/buildgen/cmd"

// main is the entry point of the buildgen CLI application.
// It executes the root command which handles argument parsing and subcommand dispatch.
func main() {
	cmd.Execute()
}
