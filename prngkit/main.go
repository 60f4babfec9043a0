// Package main implements the prngkit executable.
package main

import "github.com/simlab/prngkit/prngkit/cmd"

func main() {
	cmd.Execute()
}
