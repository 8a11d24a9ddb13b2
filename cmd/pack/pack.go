package pack

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

var PackCmd = &cobra.Command{
	Use:   "pack [entries...]",
	Short: "Pack files and directories into an hzip archive",
	Long:  "Pack one or more files and directories recursively into a single hzip archive named after the first entry.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := pkg.PackOptions{
			Multithreaded: multithreaded,
			Workers:       workers,
		}
		if verbose {
			opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}

		archive, blocks, err := pkg.Pack(args, opts)
		if err != nil {
			fmt.Printf("Error packing entries %v: %s\n", args, err)
			os.Exit(1)
		}
		fmt.Printf("Successfully packed %d files into %s\n", len(blocks), archive)
	},
}

func init() {
	PackCmd.Flags().BoolVarP(&multithreaded, "mt", "m", false, "Compress files in parallel")
	PackCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of workers (0 = auto)")
	PackCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log phase timings to stderr")
}
