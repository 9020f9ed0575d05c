package main

import "github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/cli"

func main() {
	cli.Execute()
}
