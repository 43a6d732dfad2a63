package tracker

import (
	"context"
	"log"
	"time"

	"skyportal/pkg/adsb"
)

// State is the refresh cycle position. The controller rests at Idle between
// polls; Updated and Failed record how the last cycle ended.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateUpdated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateUpdated:
		return "updated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Policy is the ground-state filtering applied to every normalized batch,
// uniformly across sources.
type Policy struct {
	// SkipGround drops non-plottable and on-ground aircraft at ingestion,
	// so memory pressure is identical no matter which source produced the
	// data.
	SkipGround bool

	// AltitudeFloorM culls airborne contacts below this geometric altitude
	// as ground clutter. Zero disables the floor. Only applied when
	// SkipGround is set.
	AltitudeFloorM float64
}

// Stats is the skip accounting for one refresh cycle. Skips are an
// observability side effect, never a failure.
type Stats struct {
	Received    int // records in the upstream batch
	Kept        int // records retained after policy filtering
	Malformed   int // records the source failed to normalize
	MissingData int // records without lat/lon/track
	OnGround    int // surface aircraft dropped by policy
	BelowFloor  int // airborne aircraft culled below the altitude floor
}

// Controller owns the current aircraft set and drives the poll cadence.
// It is single-owner state: one control loop calls Apply and reads the set;
// renderers borrow the slice for one draw pass. A failed poll retains the
// previous set, since stale-but-valid data beats a blank screen.
type Controller struct {
	source   adsb.Source
	interval time.Duration
	policy   Policy

	state       State
	aircraft    []adsb.AircraftState
	apiTime     time.Time
	lastRefresh time.Time
	lastErr     error
	lastStats   Stats
}

// New builds a controller for the given source and poll interval.
func New(source adsb.Source, interval time.Duration, policy Policy) *Controller {
	return &Controller{
		source:   source,
		interval: interval,
		policy:   policy,
	}
}

// Poll runs one fetch+normalize against the source without touching
// controller state, so it is safe to call off the owner loop (e.g. from a
// display framework's command goroutine). Apply the result on the owner
// loop.
func (c *Controller) Poll(ctx context.Context) (adsb.Batch, error) {
	raw, err := c.source.Fetch(ctx)
	if err != nil {
		return adsb.Batch{}, err
	}
	return c.source.Normalize(raw)
}

// Apply finishes a refresh cycle: on success the owned aircraft set and
// timestamp are replaced atomically (whole set, no incremental merge); on a
// recoverable upstream failure the previous set is retained and the error
// is reduced to a log line. Returns the cycle's skip accounting.
func (c *Controller) Apply(batch adsb.Batch, err error) Stats {
	c.lastRefresh = time.Now()

	if err != nil {
		c.state = StateFailed
		c.lastErr = err
		switch {
		case isTimeout(err):
			log.Printf("%s: poll timed out, keeping %d stale aircraft: %v", c.source.Name(), len(c.aircraft), err)
		default:
			log.Printf("%s: poll failed, keeping %d stale aircraft: %v", c.source.Name(), len(c.aircraft), err)
		}
		return Stats{}
	}

	stats := Stats{
		Received:  len(batch.Aircraft),
		Malformed: batch.Malformed,
	}

	kept := make([]adsb.AircraftState, 0, len(batch.Aircraft))
	for _, state := range batch.Aircraft {
		switch {
		case !state.Plottable():
			stats.MissingData++
			if c.policy.SkipGround {
				continue
			}
		case c.policy.SkipGround && state.OnGround:
			stats.OnGround++
			continue
		case c.policy.SkipGround && c.belowFloor(state):
			stats.BelowFloor++
			continue
		}
		kept = append(kept, state)
	}
	stats.Kept = len(kept)

	c.state = StateUpdated
	c.lastErr = nil
	c.aircraft = kept
	c.apiTime = batch.APITime
	c.lastStats = stats

	log.Printf("%s: %d aircraft kept of %d (%d malformed, %d missing data, %d on ground, %d below floor)",
		c.source.Name(), stats.Kept, stats.Received, stats.Malformed, stats.MissingData, stats.OnGround, stats.BelowFloor)

	return stats
}

// Refresh runs one complete poll-normalize-replace cycle. This is the
// single-loop entry point used by headless pollers; interactive displays
// split Poll and Apply across their event loop instead.
func (c *Controller) Refresh(ctx context.Context) Stats {
	c.state = StateFetching
	batch, err := c.Poll(ctx)
	return c.Apply(batch, err)
}

// belowFloor reports whether an airborne contact sits under the configured
// ground-clutter altitude floor.
func (c *Controller) belowFloor(state adsb.AircraftState) bool {
	if c.policy.AltitudeFloorM <= 0 || state.GeoAltitudeM == nil {
		return false
	}
	return *state.GeoAltitudeM < c.policy.AltitudeFloorM
}

// CanDraw reports whether there is anything to plot. Renderers must skip
// the redraw entirely when false rather than render an empty map; clearing
// the screen on a failed poll just produces flicker.
func (c *Controller) CanDraw() bool {
	return len(c.aircraft) > 0
}

// Aircraft returns the current set. The slice is borrowed for one draw
// pass: the next successful Apply replaces it wholesale.
func (c *Controller) Aircraft() []adsb.AircraftState {
	return c.aircraft
}

// APITime is the upstream timestamp of the last successful refresh.
func (c *Controller) APITime() time.Time { return c.apiTime }

// State reports the current cycle state.
func (c *Controller) State() State { return c.state }

// LastError is the failure from the most recent cycle, or nil after a
// successful one.
func (c *Controller) LastError() error { return c.lastErr }

// LastStats is the skip accounting of the last successful refresh.
func (c *Controller) LastStats() Stats { return c.lastStats }

// Interval is the configured poll cadence.
func (c *Controller) Interval() time.Duration { return c.interval }

// Due reports whether enough time has elapsed since the last cycle for a
// new poll. The first call is always due so the display fills immediately.
func (c *Controller) Due(now time.Time) bool {
	if c.lastRefresh.IsZero() {
		return true
	}
	return now.Sub(c.lastRefresh) >= c.interval
}

func isTimeout(err error) bool {
	_, ok := adsb.IsTimeout(err)
	return ok
}
