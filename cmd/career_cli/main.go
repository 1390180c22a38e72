// Command career_cli corre el test vocacional localmente, sin base de datos.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"careermate/internal/matching"
)

var (
	logger = zap.NewNop()
	engine = matching.NewEngine(nil)
)

var rootCmd = &cobra.Command{
	Use:   "career_cli",
	Short: "Career fit test from the terminal",
	Long:  "Take the career fit test interactively or score a file of answers against the built-in career catalog.",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger = zap.NewExample()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log scoring steps")
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
