package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/gibberish/internal/compiler"
)

// build: compile a source file to MIPS assembly
var BuildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile a (.gib) source file into (.s) MIPS assembly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, err := compiler.CompileAndWrite(args[0], outDir)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	},
}
