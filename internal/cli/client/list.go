package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ContentListResponse represents the list API response.
type ContentListResponse struct {
	Items   []ContentItem `json:"items"`
	Cursor  string        `json:"cursor,omitempty"`
	HasMore bool          `json:"has_more"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		topic     string
		source    string
		validated string
		limit     int
		cursor    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items",
		Long:  "Lists stored content items, newest first, with optional filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, topic, source, validated, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Filter by topic label")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source")
	cmd.Flags().StringVar(&validated, "validated", "", "Filter by validated flag (true|false)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, topic, source, validated string, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	if topic != "" {
		query.Set("topic", topic)
	}
	if source != "" {
		query.Set("source", source)
	}
	if validated != "" {
		query.Set("validated", validated)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/content"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ContentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	fmt.Printf("Found %d items:\n\n", len(listResp.Items))
	for i, item := range listResp.Items {
		title := item.Title
		if title == "" {
			title = firstLine(item.Text)
		}
		fmt.Printf("%d. %s\n", i+1, title)
		if len(item.Topics) > 0 {
			fmt.Printf("   Topics: %s\n", strings.Join(item.Topics, ", "))
		}
		if item.Source != "" {
			fmt.Printf("   Source: %s\n", item.Source)
		}
		fmt.Printf("   Validated: %t\n", item.Validated)
		fmt.Printf("   Created: %s\n", item.CreatedAt)
		fmt.Printf("   ID: %s\n", item.ID)
		if i < len(listResp.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	const maxLen = 80
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
