package main

import (
	"os"

	"github.com/crimson-sun/sieve/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
