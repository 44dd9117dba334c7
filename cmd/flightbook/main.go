// Command flightbook is the flight reservation CLI.
package main

import (
	"os"

	"github.com/roach88/flightbook/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
