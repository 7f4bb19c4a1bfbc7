package main

import "github.com/devscripts/devscripts/cmd"

func main() {
	cmd.Execute()
}
