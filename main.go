package main

import "texshrink/cmd"

func main() {
	cmd.Execute()
}
