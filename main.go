package main

import (
	_ "embed"
	"os"
	"strings"

	"photofiler/cmd"
)

//go:embed VERSION
var embeddedVersion string

func main() {
	// -ldflags wins over the embedded file.
	if v := strings.TrimSpace(embeddedVersion); v != "" && cmd.Version == "dev" {
		cmd.Version = v
		cmd.ApplyVersion()
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
