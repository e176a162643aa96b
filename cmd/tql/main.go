package main

import "github.com/orhun/tql/cmd/tql/commands"

func main() {
	commands.Execute()
}
