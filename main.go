package main

import "github.com/conceptbridge/conceptbridge/cmd"

func main() {
	cmd.Execute()
}
