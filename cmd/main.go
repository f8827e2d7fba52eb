package main

import (
	"os"

	"jeopardy-board/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
