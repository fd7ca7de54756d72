package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/logroll/logroll/internal/catalog"
	"github.com/logroll/logroll/internal/fsstat"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk usage for a rotated file directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		prefix, _ := cmd.Flags().GetString("prefix")
		suffix, _ := cmd.Flags().GetString("suffix")

		st, err := fsstat.Probe(dir)
		if err != nil {
			return err
		}
		entries, err := catalog.List(dir, prefix, suffix, slog.Default())
		if err != nil {
			return err
		}
		catalog.SortByName(entries)

		var used, usedOnDisk int64
		for _, e := range entries {
			used += e.Size
			usedOnDisk += e.SizeOnDisk
		}

		fmt.Printf("files:     %d\n", len(entries))
		fmt.Printf("used:      %s (%s on disk)\n",
			humanize.IBytes(uint64(used)), humanize.IBytes(uint64(usedOnDisk)))
		fmt.Printf("available: %s\n", humanize.IBytes(st.AvailableSpace))
		fmt.Printf("free:      %s\n", humanize.IBytes(st.FreeSpace))
		fmt.Printf("total:     %s\n", humanize.IBytes(st.TotalSpace))
		if len(entries) > 0 {
			fmt.Printf("oldest:    %s\n", entries[0].Name)
			fmt.Printf("newest:    %s\n", entries[len(entries)-1].Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("dir", "./logs", "Directory holding rotated files")
	statusCmd.Flags().String("prefix", "log-", "File name prefix")
	statusCmd.Flags().String("suffix", ".log", "File name suffix")
}
