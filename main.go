// Package main is the entry point for the fsg application
package main

import (
	"github.com/finstmt/fsg/cmd"
)

func main() {
	cmd.Execute()
}
