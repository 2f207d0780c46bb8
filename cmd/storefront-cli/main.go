package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var Version = "dev"

func main() {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "lolipop",
		Short:         "Lolipop Wear storefront client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "storefront API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.redisSession, "redis-session", "", "keep the cart in Redis under this session id instead of a local file")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output as JSON")

	rootCmd.AddCommand(catalogCmd(opts))
	rootCmd.AddCommand(cartCmd(opts))
	rootCmd.AddCommand(checkoutCmd(opts))
	rootCmd.AddCommand(ordersCmd(opts))
	rootCmd.AddCommand(seedCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
