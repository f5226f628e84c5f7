package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PoorRican/BidBeast/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage feed sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered feed URLs",
	RunE:  runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Register a feed URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a feed URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func openSourceStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.NewSQLiteStore(cfg.StorePath)
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	sqlStore, err := openSourceStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	urls, err := sqlStore.ListSources(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list sources: %v\n", err)
		os.Exit(1)
	}

	if len(urls) == 0 {
		fmt.Println("No feed sources registered.")
		return nil
	}
	for _, url := range urls {
		fmt.Println(url)
	}
	fmt.Printf("\nTotal: %d feeds\n", len(urls))
	return nil
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fmt.Fprintf(os.Stderr, "invalid feed URL %q: must start with http:// or https://\n", url)
		os.Exit(1)
	}

	sqlStore, err := openSourceStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	if err := sqlStore.AddSource(context.Background(), url); err != nil {
		fmt.Fprintf(os.Stderr, "failed to add source: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added %s\n", url)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	sqlStore, err := openSourceStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	if err := sqlStore.RemoveSource(context.Background(), args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "failed to remove source: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}
