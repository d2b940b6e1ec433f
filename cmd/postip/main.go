package main

import (
	"fmt"
	"os"

	"github.com/viant/postip"
	_ "github.com/viant/scy/kms/blowfish"
)

func main() {
	if err := postip.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
