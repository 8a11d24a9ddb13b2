package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "View hzip's version",
	Long:  "Display the version of hzip installed on your system.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("hzip version 0.1.0")
		return nil
	},
}
