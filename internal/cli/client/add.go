package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// CreateContentRequest represents the create content API request.
type CreateContentRequest struct {
	Title     string   `json:"title,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Text      string   `json:"text"`
	Topics    []string `json:"topics,omitempty"`
	Source    string   `json:"source,omitempty"`
	URL       string   `json:"url,omitempty"`
	Validated *bool    `json:"validated,omitempty"`
}

// BatchResult represents a single result in a batch operation.
type BatchResult struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Title  string `json:"title,omitempty"`
}

// BatchResponse represents the response for a batch operation.
type BatchResponse struct {
	Results   []BatchResult `json:"results"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var (
		file        string
		title       string
		excerpt     string
		topics      []string
		source      string
		url         string
		unvalidated bool
		batch       bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add content from stdin or file",
		Long: `Add a content item from JSON input (stdin or file) or plain text with flags.

Examples:
  # Add from JSON on stdin
  echo '{"title":"Raft notes","text":"Leaders are elected by majority vote."}' | veritext add

  # Add plain text from a file with metadata flags
  veritext add --file notes.txt --title "Raft notes" --topic consensus --topic raft

  # Mark an item as unvalidated
  veritext add --file draft.txt --title "Draft" --unvalidated

  # Streaming batch add from JSONL (one JSON object per line)
  cat items.jsonl | veritext add --batch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if batch {
				return runBatchAdd(cmd, file, outputJSON)
			}
			return runAdd(cmd, file, title, excerpt, topics, source, url, unvalidated, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Input file (JSON or plain text)")
	cmd.Flags().StringVar(&title, "title", "", "Title (optional)")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Short excerpt (optional)")
	cmd.Flags().StringSliceVarP(&topics, "topic", "t", nil, "Topic label (repeatable)")
	cmd.Flags().StringVar(&source, "source", "", "Source identifier (optional)")
	cmd.Flags().StringVar(&url, "url", "", "Source URL (optional)")
	cmd.Flags().BoolVar(&unvalidated, "unvalidated", false, "Mark the item as not yet validated")
	cmd.Flags().BoolVar(&batch, "batch", false, "Batch mode: read JSONL input, one item per line")

	return cmd
}

// buildCreateRequest turns raw input plus flags into a create request. JSON
// input supplies the fields directly; anything else becomes the text body.
// Flags override fields parsed from JSON.
func buildCreateRequest(input []byte, title, excerpt string, topics []string, source, url string, unvalidated bool) (*CreateContentRequest, error) {
	var req CreateContentRequest

	if isJSONInput(input) {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, fmt.Errorf("failed to parse JSON input: %w", err)
		}
	} else {
		req.Text = string(input)
	}

	if title != "" {
		req.Title = title
	}
	if excerpt != "" {
		req.Excerpt = excerpt
	}
	if len(topics) > 0 {
		req.Topics = topics
	}
	if source != "" {
		req.Source = source
	}
	if url != "" {
		req.URL = url
	}
	if unvalidated {
		f := false
		req.Validated = &f
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	return &req, nil
}

func isJSONInput(input []byte) bool {
	s := strings.TrimSpace(string(input))
	return len(s) > 0 && (s[0] == '{' || s[0] == '[')
}

func runAdd(cmd *cobra.Command, file, title, excerpt string, topics []string, source, url string, unvalidated, outputJSON bool) error {
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

	req, err := buildCreateRequest(input, title, excerpt, topics, source, url, unvalidated)
	if err != nil {
		return err
	}

	resp, err := api.Post("/content", req)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	var item ContentItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(item, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Created content: %s\n", item.ID)
		if item.Title != "" {
			fmt.Printf("Title: %s\n", item.Title)
		}
		if len(item.Topics) > 0 {
			fmt.Printf("Topics: %s\n", strings.Join(item.Topics, ", "))
		}
	}

	return nil
}

// runBatchAdd processes JSONL input line by line for memory efficiency.
func runBatchAdd(cmd *cobra.Command, file string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var reader io.Reader
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		reader = f
	} else {
		reader = os.Stdin
	}

	scanner := bufio.NewScanner(reader)
	// Large items need a bigger buffer (up to 5MB per line)
	const maxScanTokenSize = 5 * 1024 * 1024
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	response := BatchResponse{
		Results: make([]BatchResult, 0),
	}

	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lineNum++
		response.Total++

		var item CreateContentRequest
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			response.Results = append(response.Results, BatchResult{
				Status: "failed",
				Error:  fmt.Sprintf("line %d: failed to parse JSON: %v", lineNum, err),
			})
			response.Failed++
			if !outputJSON {
				fmt.Fprintf(os.Stderr, "Line %d: parse error: %v\n", lineNum, err)
			}
			continue
		}

		if strings.TrimSpace(item.Text) == "" {
			response.Results = append(response.Results, BatchResult{
				Status: "failed",
				Error:  "text is required",
				Title:  item.Title,
			})
			response.Failed++
			if !outputJSON {
				fmt.Fprintf(os.Stderr, "Line %d: text is required\n", lineNum)
			}
			continue
		}

		resp, err := api.Post("/content", item)
		if err != nil {
			response.Results = append(response.Results, BatchResult{
				Status: "failed",
				Error:  err.Error(),
				Title:  item.Title,
			})
			response.Failed++
			if !outputJSON {
				fmt.Fprintf(os.Stderr, "Line %d: %v\n", lineNum, err)
			}
			continue
		}

		var created ContentItem
		if err := json.Unmarshal(resp.Data, &created); err != nil {
			response.Results = append(response.Results, BatchResult{
				Status: "failed",
				Error:  fmt.Sprintf("failed to parse response: %v", err),
				Title:  item.Title,
			})
			response.Failed++
			continue
		}

		response.Results = append(response.Results, BatchResult{
			ID:     created.ID,
			Status: "created",
			Title:  created.Title,
		})
		response.Succeeded++

		if !outputJSON {
			fmt.Printf("Created: %s - %s\n", created.ID, created.Title)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	if response.Total == 0 {
		return fmt.Errorf("no items provided")
	}

	if outputJSON {
		output, _ := json.MarshalIndent(response, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("\nBatch complete: %d succeeded, %d failed out of %d total\n",
			response.Succeeded, response.Failed, response.Total)
	}

	if response.Failed > 0 {
		return fmt.Errorf("batch completed with %d failures", response.Failed)
	}

	return nil
}
