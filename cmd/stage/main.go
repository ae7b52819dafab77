package main

import (
	"context"
	"fmt"
	"os"

	"github.com/graeme-hill/flc-go/lib"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: stage <srcDir> <connection string>")
		os.Exit(2)
	}

	ctx := context.Background()
	err := lib.StageDir(ctx, os.Args[1], os.Args[2], lib.DefaultArtifactTable, lib.DefaultConfig().Package)
	if err != nil {
		panic(err)
	}
}
