// bridgectl is the human front-end for the issue bridge: each subcommand
// spawns the bridge executable for one request and prints the result.
package main

import "github.com/issuebridge/bridge-core/core/cli"

func main() {
	cli.Execute()
}
