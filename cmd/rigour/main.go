package main

import (
	"os"

	"github.com/rigour-dev/rigour/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
