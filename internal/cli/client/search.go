package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query         string   `json:"query"`
	Topics        []string `json:"topics,omitempty"`
	Source        string   `json:"source,omitempty"`
	ValidatedOnly *bool    `json:"validated_only,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// SearchResult represents a single search result.
type SearchResult struct {
	Content    ContentItem `json:"content"`
	Similarity float64     `json:"similarity"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		topics     []string
		source     string
		includeAll bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over stored content",
		Long: `Searches stored content by meaning, best match first.

Examples:
  veritext search "how does leader election work"
  veritext search "cache invalidation" --topic distributed-systems --limit 10
  veritext search "draft ideas" --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			query := strings.Join(args, " ")
			return runSearch(cmd, query, topics, source, includeAll, limit, outputJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&topics, "topic", "t", nil, "Filter by topic label (repeatable)")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source")
	cmd.Flags().BoolVar(&includeAll, "all", false, "Include unvalidated content in results")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, topics []string, source string, includeAll bool, limit int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{
		Query:  query,
		Topics: topics,
		Source: source,
		Limit:  limit,
	}
	if includeAll {
		f := false
		req.ValidatedOnly = &f
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	fmt.Printf("Found %d matches:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		title := result.Content.Title
		if title == "" {
			title = firstLine(result.Content.Text)
		}
		fmt.Printf("%d. %s (similarity: %.3f)\n", i+1, title, result.Similarity)
		if result.Content.Excerpt != "" {
			fmt.Printf("   %s\n", result.Content.Excerpt)
		}
		if len(result.Content.Topics) > 0 {
			fmt.Printf("   Topics: %s\n", strings.Join(result.Content.Topics, ", "))
		}
		fmt.Printf("   ID: %s\n", result.Content.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
