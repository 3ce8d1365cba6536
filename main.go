package main

import "procsweep/internal/cli"

func main() {
	cli.Execute()
}
