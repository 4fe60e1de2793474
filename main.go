package main

import "github.com/testsmith-io/testsmith/cmd"

func main() {
	cmd.Execute()
}
