package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlive/faq-chatbot/internal/matcher"
	"github.com/openlive/faq-chatbot/internal/repository"
	"github.com/openlive/faq-chatbot/internal/service"
)

var (
	askCorpus    string
	askThreshold float64
	askSearch    bool
	askLimit     int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from a corpus file",
	Long: `Runs the best-match lookup against a local corpus file and prints the
answer, or the suggestions when no question is a confident match. With
--search the ranked search results are printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCorpus, "corpus", "c", defaultCorpusPath, "corpus file (JSON or YAML)")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", matcher.DefaultThreshold, "confidence threshold")
	askCmd.Flags().BoolVar(&askSearch, "search", false, "print ranked search results")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 5, "maximum number of search results")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := service.NewFAQService(ctx, repository.NewFileCorpusRepository(askCorpus), service.FAQOptions{
		MatchThreshold: &askThreshold,
	})
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	if askSearch {
		zero := 0.0
		results := svc.Search(ctx, args[0], service.SearchOptions{Threshold: &zero, Limit: askLimit})
		if len(results) == 0 {
			cmd.Println("No results found.")
			return nil
		}
		for i, r := range results {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Question, r.Score)
			cmd.Printf("      %s / %s\n", r.Category, r.ID)
		}
		return nil
	}

	res := svc.FindAnswer(ctx, args[0])
	if res.Success {
		cmd.Printf("%s (%.3f)\n\n%s\n", res.Match.Question.Question, res.Score, res.Match.Answer)
		return nil
	}

	cmd.Printf("%s (best score %.3f, threshold %.2f)\n", res.Message, res.Score, res.Threshold)
	for _, s := range res.Suggestions {
		cmd.Printf("  - %s\n", s)
	}
	return nil
}
