package main

import (
	"os"

	"github.com/abhisek/escapebook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
