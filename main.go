// main is the entry point for the rubric CLI.
package main

import (
	"github.com/huangsam/rubric/cmd"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/internal/iocache"
)

func main() {
	defer iocache.CloseHistory()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	cmd.SetHistoryManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
