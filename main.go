package main

import (
	"os"

	"github.com/fleetcost/trucktco/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
