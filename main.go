// main is the entry point for the prefscore CLI.
package main

import (
	"github.com/huangsam/prefscore/cmd"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Command failed", err)
	}
}
