package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/logroll/logroll"
	"github.com/logroll/logroll/internal/audit"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Stream stdin into a directory of rotated files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromFlags()
		if err != nil {
			return err
		}

		hooks := logroll.Hooks(logroll.NoopHooks{})
		if path := viper.GetString("audit-db"); path != "" {
			journal, err := audit.Open(path)
			if err != nil {
				return fmt.Errorf("open audit journal: %w", err)
			}
			defer journal.Close()
			hooks = &journalHooks{journal: journal}
		}

		w, err := logroll.NewWithHooks(cfg, hooks)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return stream(ctx, os.Stdin, w)
		})

		err = g.Wait()
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	},
}

// stream copies r into w in chunks until EOF or ctx is cancelled.
func stream(ctx context.Context, r io.Reader, w io.Writer) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func configFromFlags() (logroll.Config, error) {
	cfg := logroll.Config{
		TargetDir:          viper.GetString("dir"),
		Prefix:             viper.GetString("prefix"),
		Suffix:             viper.GetString("suffix"),
		MaxFileAge:         viper.GetDuration("max-file-age"),
		MaxFileCount:       viper.GetInt("max-file-count"),
		MaxUseOfTotal:      viper.GetFloat64("max-use-of-total"),
		MinAvailOfTotal:    viper.GetFloat64("min-avail-of-total"),
		WarnIfAvailReached: viper.GetBool("warn-if-avail-reached"),
		Logger:             slog.Default(),
	}

	sizes := []struct {
		flag string
		dst  *int64
	}{
		{"max-file-size", &cfg.MaxFileSize},
		{"max-use-bytes", &cfg.MaxUseBytes},
		{"reserved", &cfg.Reserved},
		{"min-avail-bytes", &cfg.MinAvailBytes},
	}
	for _, s := range sizes {
		raw := viper.GetString(s.flag)
		if raw == "" {
			continue
		}
		v, err := humanize.ParseBytes(raw)
		if err != nil {
			return logroll.Config{}, fmt.Errorf("invalid %s %q: %w", s.flag, raw, err)
		}
		*s.dst = int64(v)
	}

	return cfg, nil
}

// journalHooks records rotation events into the audit journal.
type journalHooks struct {
	journal *audit.Journal
}

func (h *journalHooks) FileOpened(w *logroll.Writer) error {
	return h.journal.Record(context.Background(), audit.Event{
		Op:   audit.OpOpen,
		File: w.CurrentName(),
	})
}

func (h *journalHooks) FileClosing(w *logroll.Writer) error {
	return h.journal.Record(context.Background(), audit.Event{
		Op:    audit.OpClose,
		File:  w.CurrentName(),
		Bytes: w.CurrentSize(),
	})
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().String("dir", "./logs", "Directory to write rotated files into")
	writeCmd.Flags().String("prefix", "log-", "File name prefix")
	writeCmd.Flags().String("suffix", ".log", "File name suffix")
	writeCmd.Flags().String("max-file-size", "16MiB", "Rotate before the current file would exceed this size")
	writeCmd.Flags().Duration("max-file-age", 0, "Rotate when the current file is older than this (0 disables)")
	writeCmd.Flags().Int("max-file-count", 0, "Delete oldest files beyond this count (0 disables)")
	writeCmd.Flags().String("max-use-bytes", "", "Cap on total bytes occupied by rotated files")
	writeCmd.Flags().Float64("max-use-of-total", 0, "Cap on use relative to the filesystem size (0.01 = 1%)")
	writeCmd.Flags().String("reserved", "", "Bytes subtracted from the relative cap for other services")
	writeCmd.Flags().String("min-avail-bytes", "", "Free space floor that must remain after each write")
	writeCmd.Flags().Float64("min-avail-of-total", 0, "Free space floor relative to the filesystem size")
	writeCmd.Flags().Bool("warn-if-avail-reached", false, "Warn when the availability floor is the limiting factor")
	writeCmd.Flags().String("audit-db", "", "Record rotation events into this sqlite database")

	bindFlags(writeCmd.Flags(),
		"dir", "prefix", "suffix",
		"max-file-size", "max-file-age", "max-file-count",
		"max-use-bytes", "max-use-of-total", "reserved",
		"min-avail-bytes", "min-avail-of-total", "warn-if-avail-reached",
		"audit-db")
}

func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		viper.BindPFlag(name, fs.Lookup(name))
	}
}
