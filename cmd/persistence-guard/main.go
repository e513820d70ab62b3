// persistence-guard checks error normalization against a configured database.
//
// Usage:
//
//	persistence-guard [--config config.yaml] probe
//	persistence-guard [--config config.yaml] serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set through ldflags at build time.
var version = "dev"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:           "persistence-guard",
		Short:         "Persistence error normalization toolkit",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file")

	path := func() string { return cfgPath }
	rootCmd.AddCommand(newProbeCmd(path), newServeCmd(path))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
