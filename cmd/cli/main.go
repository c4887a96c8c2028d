package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backoffice-cli",
		Short: "Back office CLI tool",
		Long:  `A command line interface for interacting with the back office API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the back office API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BACKOFFICE_TOKEN"), "Bearer token for authentication")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// Vendor import commands
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Vendor import operations",
	}

	var (
		statementID string
		vendor      string
		description string
		pdfPath     string
	)

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a vendor statement for import",
		Run: func(cmd *cobra.Command, args []string) {
			submitImport(statementID, vendor, description, pdfPath)
		},
	}
	submitCmd.Flags().StringVar(&statementID, "statement", "", "Target statement ID")
	submitCmd.Flags().StringVar(&vendor, "vendor", "", "Vendor identifier")
	submitCmd.Flags().StringVar(&description, "description", "", "Import description")
	submitCmd.Flags().StringVar(&pdfPath, "pdf", "", "Path to the vendor statement PDF")
	submitCmd.MarkFlagRequired("statement")
	submitCmd.MarkFlagRequired("vendor")
	submitCmd.MarkFlagRequired("pdf")

	statusCmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show the status of an import job",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/vendor-import/jobs/" + args[0])
		},
	}

	importCmd.AddCommand(submitCmd, statusCmd)
	rootCmd.AddCommand(importCmd)

	// Statement commands
	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Owner statement operations",
	}

	getCmd := &cobra.Command{
		Use:   "get [statement-id]",
		Short: "Show a statement with its line items",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/statements/" + args[0])
		},
	}

	recalcCmd := &cobra.Command{
		Use:   "recalculate [statement-id]",
		Short: "Recompute a statement's totals from its line items",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/statements/"+args[0]+"/recalculate", nil)
		},
	}

	statementCmd.AddCommand(getCmd, recalcCmd)
	rootCmd.AddCommand(statementCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func submitImport(statementID, vendor, description, pdfPath string) {
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		fmt.Printf("Error reading PDF: %v\n", err)
		os.Exit(1)
	}

	payload := map[string]string{
		"current_statement_id": statementID,
		"vendor":               vendor,
		"description":          description,
		"pdf_base64":           base64.StdEncoding.EncodeToString(pdf),
	}

	postJSON("/api/v1/vendor-import", payload)
}

func getJSON(path string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}

	doRequest(req)
}

func postJSON(path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	doRequest(req)
}

func doRequest(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\n", resp.StatusCode)
		os.Exit(1)
	}
}
