package main

import (
	"github.com/srcforge/srcforge/pkg/cmd"
)

func main() {
	cmd.Execute()
}
