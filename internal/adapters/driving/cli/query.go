package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/openstrand/oracle-indexer/internal/core/services"
)

var (
	flagQueryIndex string
	flagQueryTop   int
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Rank index chunks against a query string",
	Long: `Loads an existing index artifact, embeds the query text with the
configured provider, and prints the most similar chunks. Useful as an
offline smoke test of an artifact before deploying it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryIndex, "index", defaultOutput, "index artifact to query")
	queryCmd.Flags().IntVar(&flagQueryTop, "top", 5, "number of results to print")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	opts := optionsFromFlags()
	embedder, err := buildEmbedder(opts)
	if err != nil {
		return err
	}
	defer embedder.Close()

	matches, err := services.NewQuery(embedder, flagQueryIndex).Query(cmd.Context(), text, flagQueryTop)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	for i, m := range matches {
		cmd.Printf("%d. [%.4f] %s (%s #%d)\n", i+1, m.Score, m.Title, m.StrandID, m.Position)
		cmd.Printf("   %s\n", excerpt(m.Text, 160))
	}
	return nil
}

// excerpt shortens chunk text to a single display line.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
