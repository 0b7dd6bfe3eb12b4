package main

import "github.com/prolock/prolock-controller/cmd/prolock-controller/cmd"

func main() {
	cmd.Execute()
}
