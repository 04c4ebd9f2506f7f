// Package main is the iedriver entry point.
package main

import "github.com/liuxd6825/iedriver/cmd"

func main() {
	cmd.Execute()
}
