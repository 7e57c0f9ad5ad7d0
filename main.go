package main

import (
	"os"

	"github.com/JayWang0902/AI-job-matching/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
