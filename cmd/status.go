package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Query server status or a specific run",
	Long: `Queries the server for run status information.
If no run-id is provided, lists all runs.
If run-id is provided, shows detailed status for that run.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listServerRuns(fmt.Sprintf("%s/api/v1/runs", serverURL))
	}
	runID := args[0]
	return getRunStatus(fmt.Sprintf("%s/api/v1/runs/%s/status", serverURL, runID), runID)
}

func listServerRuns(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var runs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("Found %d run(s):\n\n", len(runs))
	for _, run := range runs {
		fmt.Printf("Run ID: %s\n", run["id"])
		fmt.Printf("  State: %s\n", run["state"])
		if config, ok := run["config"].(map[string]interface{}); ok {
			fmt.Printf("  Problem: %s\n", config["problem"])
			fmt.Printf("  Algorithm: %s\n", config["algorithm"])
		}
		if iters, ok := run["iterations"].(float64); ok && iters > 0 {
			fmt.Printf("  Iterations: %.0f\n", iters)
			fmt.Printf("  Loss: %g\n", run["loss"])
		}
		fmt.Println()
	}

	return nil
}

func getRunStatus(url, runID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("run not found: %s", runID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Run: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Problem: %s\n", config["problem"])
		if v, ok := config["variant"].(string); ok && v != "" {
			fmt.Printf("  Variant: %s\n", v)
		}
		fmt.Printf("  Algorithm: %s\n", config["algorithm"])
		fmt.Printf("  Max iterations: %v\n", config["maxIterations"])
		fmt.Printf("  Tolerance: %v\n", config["tolerance"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	if iters, ok := status["iterations"].(float64); ok {
		fmt.Printf("  Iterations: %.0f\n", iters)
	}
	if loss, ok := status["loss"].(float64); ok {
		fmt.Printf("  Loss: %g\n", loss)
	}
	if gn, ok := status["gradientNorm"].(float64); ok {
		fmt.Printf("  Gradient norm: %.2e\n", gn)
	}

	if summary, ok := status["summary"].(map[string]interface{}); ok {
		fmt.Println()
		fmt.Println("Outcome:")
		fmt.Printf("  Converged: %v\n", summary["converged"])
		fmt.Printf("  Final loss: %g\n", summary["finalLoss"])
		fmt.Printf("  Final grad norm: %g\n", summary["finalGradientNorm"])
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("\nElapsed: %s\n", (time.Duration(elapsed * float64(time.Second))).Round(time.Millisecond))
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
