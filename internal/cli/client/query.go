package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Question string `json:"question"`
	Label    string `json:"label,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// QuerySource represents one grounding chunk in the query response.
type QuerySource struct {
	JobDescriptionID string  `json:"job_description_id"`
	Title            string  `json:"title"`
	Label            string  `json:"label,omitempty"`
	ChunkIndex       int     `json:"chunk_index"`
	Score            float32 `json:"score"`
	ChunkText        string  `json:"chunk_text"`
}

// QueryResponse represents the query API response.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []QuerySource `json:"sources"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var (
		label string
		topK  int
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question about the indexed job descriptions",
		Long:  "Runs retrieval-augmented question answering over the indexed job descriptions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runQuery(cmd, args[0], label, topK, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Restrict retrieval to one label")
	cmd.Flags().IntVarP(&topK, "top-k", "n", 0, "Number of chunks to retrieve")

	return cmd
}

func runQuery(cmd *cobra.Command, question, label string, topK int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/query", QueryRequest{
		Question: question,
		Label:    label,
		TopK:     topK,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var queryResp QueryResponse
	if err := json.Unmarshal(resp.Data, &queryResp); err != nil {
		return fmt.Errorf("failed to parse query response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(queryResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(queryResp.Answer)

	if len(queryResp.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, src := range queryResp.Sources {
			fmt.Printf("%d. %s (%.2f)", i+1, src.Title, src.Score)
			if src.Label != "" {
				fmt.Printf(" [%s]", src.Label)
			}
			fmt.Println()

			text := src.ChunkText
			if len(text) > 100 {
				text = text[:97] + "..."
			}
			fmt.Printf("   %s\n", strings.ReplaceAll(text, "\n", " "))
		}
	}

	return nil
}
