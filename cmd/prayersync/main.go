// Command prayersync is the CLI front end of the prayer-time engine.
package main

import (
	"fmt"
	"os"

	"github.com/gfarooqi/prayersync-sub001/internal/cli"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
