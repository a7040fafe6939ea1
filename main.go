// main is the entry point for the robotsampler CLI.
package main

import (
	"github.com/andyhoegh/RobotSampler-Sims/cmd"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
