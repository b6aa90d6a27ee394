package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// JobDescriptionRequest represents the document create/update request.
type JobDescriptionRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Label   string `json:"label,omitempty"`
	Content string `json:"content"`
}

// JobDescriptionResponse represents one document in API responses.
type JobDescriptionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Label     string `json:"label,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// JDCmd creates the jd command group for document management.
func JDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jd",
		Short: "Manage job descriptions",
	}

	cmd.AddCommand(jdAddCmd())
	cmd.AddCommand(jdGetCmd())
	cmd.AddCommand(jdListCmd())
	cmd.AddCommand(jdDeleteCmd())

	return cmd
}

func jdAddCmd() *cobra.Command {
	var (
		id    string
		title string
		label string
	)

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a job description from a file",
		Long:  "Reads the file contents and creates a job description. Use '-' to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runJDAdd(cmd, args[0], id, title, label, outputJSON)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Document id (generated when empty)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Document label")

	return cmd
}

func runJDAdd(cmd *cobra.Command, path, id, title, label string, outputJSON bool) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("file %s is empty", path)
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/job-descriptions", JobDescriptionRequest{
		ID:      id,
		Title:   title,
		Label:   label,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to add job description: %w", err)
	}

	var jd JobDescriptionResponse
	if err := json.Unmarshal(resp.Data, &jd); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(jd, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Added %s\n", jd.ID)
	return nil
}

func jdGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/job-descriptions/" + args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch job description: %w", err)
			}

			var jd JobDescriptionResponse
			if err := json.Unmarshal(resp.Data, &jd); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(jd, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("ID:    %s\n", jd.ID)
			if jd.Title != "" {
				fmt.Printf("Title: %s\n", jd.Title)
			}
			if jd.Label != "" {
				fmt.Printf("Label: %s\n", jd.Label)
			}
			fmt.Printf("\n%s\n", jd.Content)
			return nil
		},
	}
}

func jdListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List job descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/job-descriptions")
			if err != nil {
				return fmt.Errorf("failed to list job descriptions: %w", err)
			}

			var docs []JobDescriptionResponse
			if err := json.Unmarshal(resp.Data, &docs); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(docs, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(docs) == 0 {
				fmt.Println("No job descriptions found.")
				return nil
			}
			for _, jd := range docs {
				line := jd.ID
				if jd.Title != "" {
					line += "  " + jd.Title
				}
				if jd.Label != "" {
					line += "  [" + jd.Label + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func jdDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job description and its vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if _, err := api.Delete("/job-descriptions/" + args[0]); err != nil {
				return fmt.Errorf("failed to delete job description: %w", err)
			}

			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
