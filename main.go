// The main package for the filehound executable.
package main

import (
	"github.com/filehound/filehound/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
