package main

import "github.com/kiesman99/spritepack/cmd"

func main() {
	cmd.Execute()
}
