package main

import (
	"os"

	"sdwcal/cmd/sdwcal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
