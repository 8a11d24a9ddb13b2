package inspect

import (
	"fmt"
	"os"

	"hzip/pkg"

	"github.com/spf13/cobra"
)

var InspectCmd = &cobra.Command{
	Use:   "inspect [archive]",
	Short: "View the contents of an hzip archive",
	Long:  "Inspect the files in an hzip archive, reading only its header region.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		archive := args[0]
		quiet, _ := cmd.Flags().GetBool("quiet")

		blocks, err := pkg.List(archive)
		if err != nil {
			fmt.Printf("Error inspecting archive %s: %s\n", archive, err)
			os.Exit(1)
		}

		if quiet {
			for _, b := range blocks {
				fmt.Println(b.PathRel)
			}
			return
		}
		fmt.Printf("%15s  %15s  %8s  %s\n", "compressed", "uncompressed", "ratio", "name")
		for _, b := range blocks {
			fmt.Printf("%15d  %15d  %7.2f%%  %s\n",
				b.CompressedSize(), b.OriginalSize, b.Ratio(), b.PathRel)
		}
	},
}

func init() {
	InspectCmd.Flags().BoolP("quiet", "Q", false, "Only print file names")
}
