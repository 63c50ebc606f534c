// Command crackle runs a disk-placement script against an existing .SAV
// object file, producing a 140 KB Apple II nibble disk image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamgreen/snapcrackle/binbuf"
	"github.com/adamgreen/snapcrackle/config"
	"github.com/adamgreen/snapcrackle/diskimage"
	"github.com/adamgreen/snapcrackle/diskimage/rw18"
)

var (
	format string
	volume int
)

var command = &cobra.Command{
	Use:  "crackle script object.sav image.nib",
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(run(args[0], args[1], args[2]))
	},
}

func init() {
	command.Flags().StringVar(&format, "format", "rwts16", "sector encoding: rwts16 or rw18")
	command.Flags().IntVar(&volume, "volume", 254, "volume number stamped into address fields")
}

func run(scriptPath, objectPath, imagePath string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	buf, err := binbuf.ReadObjectFile(objectPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	object := buf.Bytes()

	scriptFile, err := os.Open(scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer scriptFile.Close()

	switch format {
	case "rwts16":
		var interleave [diskimage.SectorsPerTrack]int
		copy(interleave[:], cfg.DiskImage.Interleave)
		img := diskimage.New(byte(volume), interleave)
		if err := diskimage.Run(img, object, scriptFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := img.WriteImage(imagePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	case "rw18":
		inserts, err := diskimage.ParseScript(scriptFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		img := rw18.New()
		if err := rw18.Run(img, object, inserts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := img.WriteImage(imagePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (want rwts16 or rw18)\n", format)
		return 1
	}

	return 0
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
