// Package monitoring samples runtime gauges of a long running server and
// warns when they suggest a leak.
package monitoring

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCheckInterval  = 30 * time.Second
	DefaultAlertThreshold = 1000
	DefaultAlertCooldown  = 5 * time.Minute
)

// Gauge reports the current value of something worth watching, such as
// the number of hosted games
type Gauge func() int

type Option func(gm *GoroutineMonitor)

func WithCheckInterval(d time.Duration) Option {
	return func(gm *GoroutineMonitor) {
		if d > 0 {
			gm.checkInterval = d
		}
	}
}

// WithAlertThreshold sets the goroutine count above which a warning is logged
func WithAlertThreshold(n int) Option {
	return func(gm *GoroutineMonitor) {
		if n > 0 {
			gm.alertThreshold = n
		}
	}
}

func WithAlertCooldown(d time.Duration) Option {
	return func(gm *GoroutineMonitor) {
		gm.alertCooldown = d
	}
}

// WithCounter replaces runtime.NumGoroutine
func WithCounter(count func() int) Option {
	return func(gm *GoroutineMonitor) {
		if count != nil {
			gm.count = count
		}
	}
}

// GoroutineMonitor tracks the goroutine count next to named gauges
type GoroutineMonitor struct {
	logger         zerolog.Logger
	count          func() int
	checkInterval  time.Duration
	alertThreshold int
	alertCooldown  time.Duration

	mu        sync.RWMutex
	baseline  int
	current   int
	peak      int
	lastAlert time.Time
	gauges    map[string]Gauge

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGoroutineMonitor takes the current goroutine count as baseline
func NewGoroutineMonitor(logger zerolog.Logger, options ...Option) *GoroutineMonitor {
	gm := &GoroutineMonitor{
		logger:         logger.With().Str("component", "GoroutineMonitor").Logger(),
		count:          runtime.NumGoroutine,
		checkInterval:  DefaultCheckInterval,
		alertThreshold: DefaultAlertThreshold,
		alertCooldown:  DefaultAlertCooldown,
		gauges:         make(map[string]Gauge),
		stopChan:       make(chan struct{}),
	}
	for _, option := range options {
		option(gm)
	}
	gm.baseline = gm.count()
	gm.current = gm.baseline
	gm.peak = gm.baseline
	return gm
}

// RegisterGauge samples g under name on every check
func (gm *GoroutineMonitor) RegisterGauge(name string, g Gauge) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.gauges[name] = g
}

// Start begins periodic checks until Stop
func (gm *GoroutineMonitor) Start() {
	gm.wg.Add(1)
	go gm.monitor()
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop ends the checks and waits for the loop to exit. Safe to call twice.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
	gm.wg.Wait()
}

func (gm *GoroutineMonitor) monitor() {
	defer gm.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().Interface("panic", r).Msg("Goroutine monitor panicked, checks stopped")
		}
	}()

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			gm.Check(now)
		case <-gm.stopChan:
			return
		}
	}
}

// Check samples every gauge once and reports whether a leak warning was
// logged
func (gm *GoroutineMonitor) Check(now time.Time) bool {
	current := gm.count()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	shouldAlert := current > gm.alertThreshold && (gm.lastAlert.IsZero() || now.Sub(gm.lastAlert) >= gm.alertCooldown)
	if shouldAlert {
		gm.lastAlert = now
	}
	gauges := make(map[string]Gauge, len(gm.gauges))
	for name, g := range gm.gauges {
		gauges[name] = g
	}
	peak := gm.peak
	gm.mu.Unlock()

	var growthRate float64
	if gm.baseline > 0 {
		growthRate = float64(current-gm.baseline) / float64(gm.baseline) * 100
	}

	evt := gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate)
	for _, name := range sortedNames(gauges) {
		evt = evt.Int(name, gauges[name]())
	}
	evt.Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// GetMetrics returns the latest sample. Gauges are read on the spot.
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	gauges := make(map[string]int, len(gm.gauges))
	for name, g := range gm.gauges {
		gauges[name] = g()
	}
	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
		Gauges:   gauges,
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current  int            `json:"current"`
	Baseline int            `json:"baseline"`
	Peak     int            `json:"peak"`
	Growth   int            `json:"growth"`
	Gauges   map[string]int `json:"gauges"`
}

func sortedNames(gauges map[string]Gauge) []string {
	names := make([]string, 0, len(gauges))
	for name := range gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
