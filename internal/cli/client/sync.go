package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SyncSummaryResponse represents the full-sync API response.
type SyncSummaryResponse struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// SyncCmd creates the sync command.
func SyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [id]",
		Short: "Sync job descriptions into the vector index",
		Long:  "Re-indexes one job description by id, or the whole corpus when no id is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if len(args) == 1 {
				return runSyncOne(cmd, args[0], outputJSON)
			}
			return runSyncAll(cmd, outputJSON)
		},
	}

	return cmd
}

func runSyncOne(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/sync/"+id, nil)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if outputJSON {
		fmt.Println(string(resp.Data))
		return nil
	}

	fmt.Printf("Synced %s\n", id)
	return nil
}

func runSyncAll(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/sync", nil)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	var summary SyncSummaryResponse
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return fmt.Errorf("failed to parse sync summary: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Synced %d, failed %d\n", summary.Synced, summary.Failed)
	for _, msg := range summary.Errors {
		fmt.Printf("  error: %s\n", msg)
	}
	return nil
}

// LabelsCmd creates the labels command.
func LabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List distinct job-description labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/labels")
			if err != nil {
				return fmt.Errorf("failed to fetch labels: %w", err)
			}

			var labelsResp struct {
				Labels []string `json:"labels"`
			}
			if err := json.Unmarshal(resp.Data, &labelsResp); err != nil {
				return fmt.Errorf("failed to parse labels: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(labelsResp.Labels, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(labelsResp.Labels) == 0 {
				fmt.Println("No labels found.")
				return nil
			}
			for _, label := range labelsResp.Labels {
				fmt.Println(label)
			}
			return nil
		},
	}
}
