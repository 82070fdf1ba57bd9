package main

import "github.com/commoni/commoni/internal/client/cli"

func main() {
	cli.Execute()
}
