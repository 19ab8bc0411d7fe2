package main

import "github.com/athlink/cli/internal/cmd"

func main() {
	cmd.Execute()
}
