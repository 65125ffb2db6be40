// Command isaacpoolctl drives an entropy pool's persisted generator
// state from the command line: seed, resume, generate output blocks,
// rekey, and probe capture capabilities.
package main

import "github.com/entropypool/isaacrand/cmd/isaacpoolctl/cmd"

func main() {
	cmd.Execute()
}
