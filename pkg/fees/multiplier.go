package fees

import (
	"sync"
	"time"

	"github.com/nspcc-dev/ledger-services/pkg/config"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	// MultiplierSource provides the congestion multiplier.
	MultiplierSource interface {
		CurrentMultiplier() int64
	}

	// ThrottleSource reports the share of network capacity in use, in
	// percents.
	ThrottleSource interface {
		UsagePercent() int
	}

	// ThrottleFunc is a function implementing ThrottleSource.
	ThrottleFunc func() int
)

// UsagePercent implements the ThrottleSource interface.
func (f ThrottleFunc) UsagePercent() int { return f() }

// CongestionMultipliers is a MultiplierSource driven by throttle usage. A
// threshold's multiplier is applied once usage stays at or above it for
// the minimum congestion period.
type CongestionMultipliers struct {
	throttle   ThrottleSource
	thresholds []config.CongestionThreshold
	minPeriod  time.Duration
	log        *zap.Logger

	lock   sync.Mutex
	starts []time.Time

	multiplier atomic.Int64
}

// NewCongestionMultipliers creates a multiplier source, thresholds must be
// sorted by ascending percent.
func NewCongestionMultipliers(throttle ThrottleSource, cfg config.FeesConfiguration, log *zap.Logger) *CongestionMultipliers {
	if log == nil {
		log = zap.NewNop()
	}
	m := &CongestionMultipliers{
		throttle:   throttle,
		thresholds: cfg.CongestionMultipliers,
		minPeriod:  time.Duration(cfg.MinCongestionPeriod) * time.Second,
		log:        log,
		starts:     make([]time.Time, len(cfg.CongestionMultipliers)),
	}
	m.multiplier.Store(1)
	return m
}

// CurrentMultiplier implements the MultiplierSource interface.
func (m *CongestionMultipliers) CurrentMultiplier() int64 {
	return m.multiplier.Load()
}

// UpdateMultiplier recalculates the multiplier at the given consensus
// time.
func (m *CongestionMultipliers) UpdateMultiplier(now time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var (
		usage = m.throttle.UsagePercent()
		mult  = int64(1)
	)
	for i, th := range m.thresholds {
		if usage < th.Percent {
			m.starts[i] = time.Time{}
			continue
		}
		if m.starts[i].IsZero() {
			m.starts[i] = now
		}
		if now.Sub(m.starts[i]) >= m.minPeriod {
			mult = th.Multiplier
		}
	}
	if old := m.multiplier.Swap(mult); old != mult {
		m.log.Info("congestion multiplier changed",
			zap.Int64("old", old),
			zap.Int64("new", mult),
			zap.Int("usage", usage))
		updateMultiplierMetric(mult)
	}
}

// ResetExpectations forgets congestion start times.
func (m *CongestionMultipliers) ResetExpectations() {
	m.lock.Lock()
	for i := range m.starts {
		m.starts[i] = time.Time{}
	}
	m.lock.Unlock()
	m.multiplier.Store(1)
}
