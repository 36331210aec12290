// Command tattoy is the terminal-in-a-terminal compositor's entrypoint
// (spec §6 "External Interfaces"): it parses CLI flags, loads config, wires
// the shadow terminal, renderer, input reader and every enabled tattoy
// together, and runs until a Protocol::End broadcast or an OS signal.
package main

import "os"

func main() {
	os.Exit(Execute())
}
