package main

import (
	inspect "hzip/cmd/inspect"
	pack "hzip/cmd/pack"
	unpack "hzip/cmd/unpack"
	version "hzip/cmd/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hzip",
	Short: "hzip archive utility",
	Long:  "hzip packs files and directories into a single per-file Huffman coded archive and losslessly restores them.",
}

func main() {
	rootCmd.AddCommand(pack.PackCmd)
	rootCmd.AddCommand(unpack.UnpackCmd)
	rootCmd.AddCommand(inspect.InspectCmd)
	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.Execute()
}
