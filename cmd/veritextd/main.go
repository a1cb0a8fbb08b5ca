package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veritext/veritext/internal/cli"
	"github.com/veritext/veritext/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veritextd",
		Short: "Veritext daemon and CLI",
		Long:  "Veritext daemon for running the API server and maintaining the content store",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ReembedCmd())
	rootCmd.AddCommand(admin.ExportCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
