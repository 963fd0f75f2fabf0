package main

import "github.com/naka-gawa/repo-insights/cmd"

func main() {
	cmd.Execute()
}
