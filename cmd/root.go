package cmd

import (
	"github.com/spf13/cobra"
)

var outDir string

var rootCmd = &cobra.Command{
	Use:   "gibc",
	Short: "gibc — the Gibberish compiler",
	Long: `gibc compiles Gibberish (.gib) source files to MIPS assembly.

Commands:
  build  Compile a (.gib) source file into (.s) MIPS assembly
`,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for build artifacts")
	rootCmd.AddCommand(BuildCmd)
}
