package main

import "codedoc/cmd"

func main() {
	cmd.Execute()
}
