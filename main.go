// main is the entry point for the canvass CLI.
package main

import (
	"github.com/votary/canvass/cmd"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/internal/tallystore"
)

func main() {
	err := cmd.Execute()

	// Close the tally store before any exit path.
	tallystore.CloseStore()

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
