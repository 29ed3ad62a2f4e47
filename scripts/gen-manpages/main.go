// Command gen-manpages writes a man page for lib-tools and each of its
// subcommands using cobra's doc package.
//
// Usage:
//
//	go run ./scripts/gen-manpages [output-dir]
//
// The default output directory is "man/man1".
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/Aakash-Pandya/lib-tools/internal/cli"
)

func main() {
	outDir := "man/man1"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir %q: %v\n", outDir, err)
		os.Exit(1)
	}

	header := &doc.GenManHeader{
		Title:   "LIB-TOOLS",
		Section: "1",
		Source:  "lib-tools",
		Manual:  "lib-tools Manual",
	}
	if err := doc.GenManTree(cli.NewRootCmd(), header, outDir); err != nil {
		fmt.Fprintf(os.Stderr, "error generating man pages: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Man pages generated in %s/\n", outDir)
}
