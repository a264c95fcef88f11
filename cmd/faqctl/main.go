// Command faqctl is the operator tool for the FAQ corpus: it validates
// corpus files and answers questions offline with the same matcher the
// server uses.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultCorpusPath = "data/faq.yaml"

var rootCmd = &cobra.Command{
	Use:           "faqctl",
	Short:         "Maintain and query the FAQ corpus",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
