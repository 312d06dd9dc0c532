package main

import "finai/internal/cli"

func main() {
	cli.Execute()
}
