// Package main provides the ruleforge command line host for the rules engine.
package main

import "github.com/cory-johannsen/ruleforge/internal/cli"

func main() {
	cli.Execute()
}
