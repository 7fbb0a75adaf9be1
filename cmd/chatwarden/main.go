package main

import "chatwarden/internal/cli"

func main() {
	cli.Execute()
}
