package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "logroll",
	Short: "A disk-quota-aware rotating stream writer",
	Long: `logroll writes a byte stream to a directory of rotated files while
enforcing limits on file size, file age, file count and disk usage,
deleting the oldest file when space must be freed.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix("LOGROLL")
	viper.AutomaticEnv()
}
