package main

import "github.com/naka-gawa/pr-snapshot/cmd"

func main() {
	cmd.Execute()
}
