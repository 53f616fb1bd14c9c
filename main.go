package main

import "nodegrid/cmd"

func main() {
	cmd.Execute()
}
