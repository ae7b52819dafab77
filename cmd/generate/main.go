package main

import (
	"fmt"
	"os"

	"github.com/graeme-hill/flc-go/lib"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: generate <srcDir> <dest.go> <package>")
		os.Exit(2)
	}

	err := lib.Generate(os.Args[1], os.Args[2], os.Args[3])
	if err != nil {
		panic(err)
	}
}
