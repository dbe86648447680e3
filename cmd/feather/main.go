package main

import (
	"fmt"
	"os"

	"github.com/feather-mc/feather/cmd/feather/feather"
)

func main() {
	if err := feather.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
