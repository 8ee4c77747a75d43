// kwscan finds every occurrence of a keyword dictionary in text.
// One pass over the input per scan, however many keywords there are.
package main

import (
	"os"

	"github.com/corey/kwscan/cmd/kwscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ScanExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
