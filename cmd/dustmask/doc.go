// Package dustmask provides the command-line interface for the dustmask tool.
// It configures subcommands (scan, mask, browse, history, etc.), parses flags,
// and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/dustmask/dustmask/cmd/dustmask"
//	func main() { dustmask.Execute() }
package dustmask
