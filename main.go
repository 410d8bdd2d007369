package main

import "github.com/shipshell/shipshell/cmd"

func main() {
	cmd.Execute()
}
