package main

import "taskflow/cmd/reportctl/commands"

func main() {
	commands.Execute()
}
