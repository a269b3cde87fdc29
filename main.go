// main is the entry point for the repopulse CLI.
package main

import (
	"github.com/huangsam/repopulse/cmd"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("Cannot run command", err)
	}
}
