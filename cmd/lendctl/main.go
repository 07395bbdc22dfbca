package main

import (
	"fmt"
	"os"

	"microlend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lendctl:", err)
		os.Exit(1)
	}
}
