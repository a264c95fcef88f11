package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openlive/faq-chatbot/internal/repository"
	"github.com/openlive/faq-chatbot/internal/service"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a corpus file for structural errors",
	Long: `Loads a JSON or YAML corpus file and reports errors (duplicate ids,
missing titles or question text, invalid URLs, malformed metadata) and
warnings (missing answers, dangling related ids, missing contact fields).
Exits with status 1 when the corpus has errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := defaultCorpusPath
	if len(args) == 1 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	corpus, err := repository.DecodeCorpus(path, data)
	if err != nil {
		return err
	}

	report := service.ValidateCorpus(corpus)

	if validateJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(out))
	} else {
		cmd.Printf("%s: %d categories, %d questions, version %s\n",
			path, len(corpus.Categories), corpus.QuestionCount(), corpus.Metadata.Version)
		for _, e := range report.Errors {
			cmd.Printf("  ERROR    %s\n", e)
		}
		for _, w := range report.Warnings {
			cmd.Printf("  WARNING  %s\n", w)
		}
		if report.Valid() {
			cmd.Println("OK")
		}
	}

	if !report.Valid() {
		return fmt.Errorf("corpus has %d errors", len(report.Errors))
	}
	return nil
}
