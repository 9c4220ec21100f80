package main

import "fwdctl/pkg/cmd"

func main() {
	cmd.Execute()
}
