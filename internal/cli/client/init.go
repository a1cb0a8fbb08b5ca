package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const envFile = ".env"

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var (
		apiToken string
		apiURL   string
		global   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure API access",
		Long: `Stores the API URL and token for later commands.

By default writes a .env file in the current directory. With --global,
writes the user-level config instead so every project can use it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiToken, apiURL, global, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token for authentication (optional for open servers)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8080)")
	cmd.Flags().BoolVar(&global, "global", false, "Write user-level config instead of a local .env")

	return cmd
}

func runInit(apiToken, apiURL string, global, outputJSON bool) error {
	_ = godotenv.Load()
	if apiToken == "" {
		apiToken = os.Getenv(envAPIToken)
	}
	if apiToken == "" {
		fmt.Print("Enter API token (leave empty for open servers): ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API token: %w", err)
		}
		apiToken = strings.TrimSpace(input)
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	// Verify the server is reachable before persisting anything.
	api, err := NewAPIClientWithConfig(apiToken, apiURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	if _, err := api.Get("/health"); err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", apiURL, err)
	}

	var location string
	if global {
		if err := SaveGlobalConfig(&GlobalConfig{APIToken: apiToken, APIURL: apiURL}); err != nil {
			return err
		}
		location, _ = GetConfigPath()
	} else {
		envData := fmt.Sprintf("%s=%s\n%s=%s\n", envAPIToken, apiToken, envAPIURL, apiURL)
		if err := os.WriteFile(envFile, []byte(envData), 0600); err != nil {
			return fmt.Errorf("failed to create .env: %w", err)
		}
		location = envFile
	}

	if outputJSON {
		result := map[string]interface{}{
			"success": true,
			"api_url": apiURL,
			"config":  location,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Configured veritext for %s\n", apiURL)
		fmt.Printf("Config saved to %s\n", location)
	}

	return nil
}
