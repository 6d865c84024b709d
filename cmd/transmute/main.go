package main

import (
	"github.com/transmute-lang/transmute/internal/cli"
)

func main() {
	cli.Execute()
}
