// Command jobqueue runs a demonstration workload against the in-process
// job queue and reports the final queue statistics.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
