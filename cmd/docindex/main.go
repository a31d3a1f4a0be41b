package main

import "docindex/cmd/docindex/cmd"

func main() {
	cmd.Execute()
}
