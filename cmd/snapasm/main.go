// Command snapasm assembles a single Merlin-style source file into a .SAV
// object file and, optionally, a listing.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamgreen/snapcrackle/asm"
	"github.com/adamgreen/snapcrackle/config"
	"github.com/adamgreen/snapcrackle/listing"
)

var (
	outPath     string
	listingPath string
)

var command = &cobra.Command{
	Use:  "snapasm source.s",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(run(args[0]))
	},
}

func init() {
	command.Flags().StringVarP(&outPath, "output", "o", "", "object file path (default: source file with .SAV extension)")
	command.Flags().StringVarP(&listingPath, "listing", "l", "", "listing output path, or '-' for stdout")
}

// run assembles source and returns the process exit status. Per spec.md's
// documented CLI contract, assembly errors are reported but never change
// the exit status away from 0 — only a fatal configuration or I/O failure
// does that.
func run(source string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(source, ".s") + ".SAV"
	}
	// The listing goes to stdout unless routed elsewhere or disabled.
	if listingPath == "" && cfg.Listing.Enabled {
		listingPath = "-"
	}

	set, err := asm.ParseInstructionSet(cfg.Assembler.InstructionSet)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	a := asm.New(cfg.Assembler.DefaultOrigin, cfg.Assembler.SymbolBucketHint)
	a.SetInstructionSet(set)
	a.MaxLineLength = cfg.Assembler.MaxLineLength
	if err := a.AssembleFile(source); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	a.CheckUndefinedSymbols()

	if err := a.Buffer.WriteObjectFile(outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if listingPath != "" {
		f := listing.Formatter{
			BytesPerRow:  cfg.Listing.BytesPerRow,
			ShowComments: cfg.Listing.ShowComments,
		}
		if err := writeListing(a, f, listingPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	fmt.Printf("%d error(s)\n", a.Errors.Count())
	return 0
}

func writeListing(a *asm.Assembler, f listing.Formatter, path string) error {
	var out *os.File
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	for _, rec := range a.ListingRecords() {
		for _, line := range f.Format(rec) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	for _, d := range a.Errors.Diagnostics {
		if _, err := fmt.Fprintln(w, d.Error()); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
