package main

import "github.com/agentic-research/formwork/cmd"

func main() {
	cmd.Execute()
}
