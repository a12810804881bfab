package main

import (
	"os"

	"github.com/dshills/commitleak/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
