// Command rmkfs mounts a reMarkable notebook tree as a read-only FUSE
// filesystem, or runs a one-shot query against it, per spec §6 "External
// interfaces".
package main

import (
	"fmt"
	"os"

	"github.com/rmkfs/rmkfs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rmkfs:", err)
		os.Exit(1)
	}
}
