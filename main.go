package main

import "github.com/eslsoft/shelfd/cmd"

func main() {
	cmd.Execute()
}
