package unpack

import (
	"fmt"
	"log/slog"
	"os"

	"hzip/pkg"

	"github.com/spf13/cobra"
)

var (
	multithreaded bool
	workers       int
	verbose       bool
)

var UnpackCmd = &cobra.Command{
	Use:   "unpack [archive]",
	Short: "Unpack an hzip archive",
	Long:  "Unpack an hzip archive into a directory named after the archive with its extension stripped.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		archive := args[0]
		opts := pkg.UnpackOptions{
			Multithreaded: multithreaded,
			Workers:       workers,
		}
		if verbose {
			opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}

		dir, err := pkg.Unpack(archive, opts)
		if err != nil {
			fmt.Printf("Error unpacking archive %s: %s\n", archive, err)
			os.Exit(1)
		}
		fmt.Printf("Successfully unpacked archive %s to directory %s\n", archive, dir)
	},
}

func init() {
	UnpackCmd.Flags().BoolVarP(&multithreaded, "mt", "m", false, "Decompress files in parallel")
	UnpackCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of workers (0 = auto)")
	UnpackCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log phase timings to stderr")
}
