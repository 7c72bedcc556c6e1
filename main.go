package main

import "apikb/internal/cli"

func main() {
	cli.Execute()
}
