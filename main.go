package main

import "github.com/theirongolddev/budgetsim/cmd"

func main() {
	cmd.Execute()
}
