package main

import "catalog/internal/cli"

func main() {
	cli.Execute()
}
