package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ContentItem represents a content item from the API.
type ContentItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	Excerpt        string   `json:"excerpt,omitempty"`
	Text           string   `json:"text"`
	Topics         []string `json:"topics"`
	Source         string   `json:"source,omitempty"`
	URL            string   `json:"url,omitempty"`
	Validated      bool     `json:"validated"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <content_id>",
		Short:   "Get a content item by ID",
		Long:    "Retrieves a content item by its ID and displays the full text.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, contentID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/content/%s", contentID))
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	var item ContentItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse content: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		printContentItem(&item)
	}

	return nil
}

func printContentItem(item *ContentItem) {
	if item.Title != "" {
		fmt.Printf("Title: %s\n", item.Title)
	}
	if item.Excerpt != "" {
		fmt.Printf("Excerpt: %s\n", item.Excerpt)
	}
	if len(item.Topics) > 0 {
		fmt.Printf("Topics: %s\n", strings.Join(item.Topics, ", "))
	}
	if item.Source != "" {
		fmt.Printf("Source: %s\n", item.Source)
	}
	if item.URL != "" {
		fmt.Printf("URL: %s\n", item.URL)
	}
	fmt.Printf("Validated: %t\n", item.Validated)
	fmt.Printf("Created: %s\n", item.CreatedAt)
	fmt.Printf("ID: %s\n", item.ID)
	fmt.Println()
	fmt.Println("--- Text ---")
	fmt.Println(item.Text)
}
