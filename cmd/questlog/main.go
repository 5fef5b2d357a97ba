package main

import (
	"os"

	"github.com/nhle/questlog/internal/credential"
)

func main() {
	if err := newRootCmd(credential.Open).Execute(); err != nil {
		os.Exit(1)
	}
}
