package main

import "github.com/lepinkainen/bookreel/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
