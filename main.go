package main

import "github.com/naka-gawa/repo-digest/cmd"

func main() {
	cmd.Execute()
}
