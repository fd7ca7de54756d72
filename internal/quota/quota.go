// Package quota decides whether pending writes fit the configured disk
// budget and frees space by deleting the oldest rotated file.
package quota

import (
	"errors"
	"log/slog"
	"math"

	"github.com/logroll/logroll/internal/catalog"
	"github.com/logroll/logroll/internal/fsstat"
)

// ErrOutOfSpace is returned when no reclaimable file remains while a
// configured limit is still violated. It signals that the quota is
// structurally unsatisfiable, not that an I/O operation failed.
var ErrOutOfSpace = errors.New("no reclaimable file remains")

// Reason identifies which check rejected a write.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonCap means the bytes occupied by rotated files exceed the
	// effective occupancy cap.
	ReasonCap
	// ReasonFloor means accepting the write would push available disk
	// space below the configured floor.
	ReasonFloor
)

// Decision is the outcome of an admission check. The rejecting check and
// its figures are reported so the caller can apply a per-reason policy
// once reclamation is exhausted.
type Decision struct {
	Admitted bool
	Reason   Reason
	Used     int64
	Limit    int64
	Avail    int64
	Floor    int64
}

// Checker admits or rejects pending writes against two independent
// mechanisms: an occupancy cap ("don't use more than X") and an
// availability floor ("always leave Y free"). Both may be active; the
// most restrictive wins.
type Checker struct {
	Dir    string
	Prefix string
	Suffix string

	MaxUseBytes   int64
	MaxUseOfTotal float64
	Reserved      int64

	MinAvailBytes      int64
	MinAvailOfTotal    float64
	WarnIfAvailReached bool

	// Probe defaults to fsstat.Probe.
	Probe fsstat.ProbeFunc
	Log   *slog.Logger
}

func (c *Checker) capConfigured() bool {
	return c.MaxUseBytes > 0 || c.MaxUseOfTotal > 0
}

func (c *Checker) floorConfigured() bool {
	return c.MinAvailBytes > 0 || c.MinAvailOfTotal > 0
}

func (c *Checker) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Check reports whether a pending write of the given length is admissible.
// When no limit is configured at all, no probe and no directory scan are
// performed.
func (c *Checker) Check(pending int64) (Decision, error) {
	if !c.capConfigured() && !c.floorConfigured() {
		return Decision{Admitted: true}, nil
	}

	probe := c.Probe
	if probe == nil {
		probe = fsstat.Probe
	}
	st, err := probe(c.Dir)
	if err != nil {
		return Decision{}, err
	}

	if c.capConfigured() {
		limit := int64(math.MaxInt64)
		if c.MaxUseBytes > 0 {
			limit = c.MaxUseBytes
		}
		if c.MaxUseOfTotal > 0 {
			rel := int64(c.MaxUseOfTotal*float64(st.TotalSpace)) - c.Reserved
			if rel < limit {
				limit = rel
			}
		}

		entries, err := catalog.List(c.Dir, c.Prefix, c.Suffix, c.logger())
		if err != nil {
			return Decision{}, err
		}
		var used int64
		for _, e := range entries {
			used += e.SizeOnDisk
		}
		if used > limit {
			return Decision{Reason: ReasonCap, Used: used, Limit: limit}, nil
		}
	}

	if c.floorConfigured() {
		floor := c.MinAvailBytes
		if c.MinAvailOfTotal > 0 {
			if rel := int64(c.MinAvailOfTotal * float64(st.TotalSpace)); rel > floor {
				floor = rel
			}
		}
		avail := int64(st.AvailableSpace) - pending
		if avail < floor {
			if c.WarnIfAvailReached {
				c.logger().Warn("availability floor reached",
					"dir", c.Dir, "avail", avail, "floor", floor)
			}
			return Decision{Reason: ReasonFloor, Avail: avail, Floor: floor}, nil
		}
	}

	return Decision{Admitted: true}, nil
}
