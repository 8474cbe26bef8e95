package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/adamamer20/pythonic-template/internal/cli"
	"github.com/adamamer20/pythonic-template/internal/version"
)

func main() {
	header := &doc.GenManHeader{
		Title:   "POSTGEN",
		Section: "1",
		Source:  "postgen " + version.Version,
		Manual:  "postgen manual",
	}

	if err := doc.GenMan(cli.NewRootCmd(), header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
