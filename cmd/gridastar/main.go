package main

import "github.com/pdrpinto/gridastar/cmd/gridastar/cmd"

func main() {
	cmd.Execute()
}
