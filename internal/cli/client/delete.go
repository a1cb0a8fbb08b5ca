package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const maxBatchSize = 100

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	var (
		file  string
		batch bool
	)

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete content by ID",
		Long: `Delete content items by ID.

Examples:
  # Delete a single content item
  veritext delete <content_id>

  # Batch delete from JSON array of IDs
  echo '["id1","id2","id3"]' | veritext delete --batch

  # Batch delete from file
  veritext delete --batch --file ids.json`,
		Args: func(cmd *cobra.Command, args []string) error {
			batchFlag, _ := cmd.Flags().GetBool("batch")
			if batchFlag {
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("requires exactly 1 argument (content_id) or use --batch flag")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if batch {
				return runBatchDelete(cmd, file, outputJSON)
			}
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Input file with JSON array of IDs")
	cmd.Flags().BoolVar(&batch, "batch", false, "Batch mode: read a JSON array of IDs")

	return cmd
}

func runDelete(cmd *cobra.Command, contentID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete(fmt.Sprintf("/content/%s", contentID))
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	if outputJSON {
		fmt.Println(string(resp.Data))
	} else {
		fmt.Printf("Deleted content: %s\n", contentID)
	}

	return nil
}

func runBatchDelete(cmd *cobra.Command, file string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var input []byte
	if file != "" {
		input, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if len(input) == 0 {
		return fmt.Errorf("no input provided")
	}

	var ids []string
	if err := json.Unmarshal(input, &ids); err != nil {
		return fmt.Errorf("failed to parse JSON array: %w - batch mode expects a JSON array of strings", err)
	}

	if len(ids) == 0 {
		return fmt.Errorf("empty batch: no IDs provided")
	}

	if len(ids) > maxBatchSize {
		return fmt.Errorf("batch size %d exceeds maximum of %d items", len(ids), maxBatchSize)
	}

	response := BatchResponse{
		Results: make([]BatchResult, 0, len(ids)),
		Total:   len(ids),
	}

	for _, id := range ids {
		if id == "" {
			response.Results = append(response.Results, BatchResult{
				Status: "failed",
				Error:  "empty ID",
			})
			response.Failed++
			continue
		}

		if _, err := api.Delete(fmt.Sprintf("/content/%s", id)); err != nil {
			response.Results = append(response.Results, BatchResult{
				ID:     id,
				Status: "failed",
				Error:  err.Error(),
			})
			response.Failed++
			continue
		}

		response.Results = append(response.Results, BatchResult{
			ID:     id,
			Status: "deleted",
		})
		response.Succeeded++
	}

	output, _ := json.MarshalIndent(response, "", "  ")
	fmt.Println(string(output))

	if response.Failed > 0 && !outputJSON {
		return fmt.Errorf("batch completed with %d failures", response.Failed)
	}

	return nil
}
