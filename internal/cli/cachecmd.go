package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndlegal/citecheck/internal/cache"
)

var clearCacheDir string

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verification cache",
	Long: `Manage the persistent verification cache.

Verified and not-verifiable outcomes are kept indefinitely; not-found
outcomes expire after 24 hours on their own. Clearing is only needed to
force a full re-verification.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached verification result",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk := cache.NewDiskCache(clearCacheDir)
		if err := disk.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("Cleared verification cache: %s\n", clearCacheDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheClearCmd.Flags().StringVar(&clearCacheDir, "cache-dir", "./cache", "verification cache directory")
}
