// Package main is the entrypoint for proverd, the prover worker pipeline.
package main

import "github.com/tutu-network/proverd/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
