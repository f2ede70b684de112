package main

import "tz/pkg/cli"

func main() {
	cli.Execute()
}
