package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// TopicsResponse represents the topics API response.
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// TopicsCmd creates the topics command.
func TopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List all topic labels",
		Long:  "Lists the distinct topic labels across all stored content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTopics(cmd, outputJSON)
		},
	}

	return cmd
}

func runTopics(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/topics")
	if err != nil {
		return fmt.Errorf("failed to list topics: %w", err)
	}

	var topicsResp TopicsResponse
	if err := json.Unmarshal(resp.Data, &topicsResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(topicsResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(topicsResp.Topics) == 0 {
		fmt.Println("No topics found.")
		return nil
	}

	for _, topic := range topicsResp.Topics {
		fmt.Println(topic)
	}

	return nil
}
