// gotts - text to speech file publisher
// License: MIT
//
// Copyright (c) 2026 go-bot contributors

package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}
