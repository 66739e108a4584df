// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"log"
	"os"

	"github.com/tebeka/atexit"
)

func init() {
	log.SetFlags(0)
	log.SetPrefix("chip8asm: ")
}

func main() {
	cmd := newCommand(os.Stdout, os.Stderr)

	err := cmd.Execute()
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
