package main

import (
	"github.com/pigment/pngpipe/src/cli"
)

func main() {
	cli.Execute()
}
