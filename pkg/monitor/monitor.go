// Package monitor implements the reconfigurable system-state polling loop
// (component C7): a single background goroutine that periodically asks the
// panel what changed, plus optional per-zone temperature and per-output
// power sub-polls on their own independent intervals.
//
// Grounded on original_source/satel_integra_api/client.py
// (_system_monitor_proc, _system_monitor_start/_stop/_reconfigure,
// power_monitor_set/temp_monitor_set) and base.py's IntegraContextRefCnt,
// the refcounted "batch several config changes, commit once" drop guard.
package monitor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gosatel/integra/pkg/proto"
)

// Requester is the panel-facing side of the monitor: asking what changed,
// re-reading one changed event's state, and pulling one analog reading.
// Deciding whether a given read needs the 32-object extra payload byte is
// left entirely to the implementation — that capability lives with the
// client facade that knows the connected panel's module version, not here.
type Requester interface {
	// PollSystemChanges asks the panel which monitored events changed
	// since the last call and returns them.
	PollSystemChanges(ctx context.Context) ([]proto.NotifyEvent, error)
	// PollEvent re-reads the current state backing a changed event.
	PollEvent(ctx context.Context, event proto.NotifyEvent) error
	// PollZoneTemperature reads one zone's temperature.
	PollZoneTemperature(ctx context.Context, zone int) error
	// PollOutputPower reads one output's power draw.
	PollOutputPower(ctx context.Context, output int) error
}

// Config is the monitor's reconfigurable polling schedule.
type Config struct {
	// PollInterval is how often to ask the panel for changed events. Zero
	// disables system-change polling entirely.
	PollInterval time.Duration
	// ZoneTemperature maps a zone number to its own poll interval.
	ZoneTemperature map[int]time.Duration
	// OutputPower maps an output number to its own poll interval.
	OutputPower map[int]time.Duration
}

func (c Config) clone() Config {
	out := Config{PollInterval: c.PollInterval}
	if c.ZoneTemperature != nil {
		out.ZoneTemperature = make(map[int]time.Duration, len(c.ZoneTemperature))
		for k, v := range c.ZoneTemperature {
			out.ZoneTemperature[k] = v
		}
	}
	if c.OutputPower != nil {
		out.OutputPower = make(map[int]time.Duration, len(c.OutputPower))
		for k, v := range c.OutputPower {
			out.OutputPower[k] = v
		}
	}
	return out
}

// Monitor runs the polling loop against one Requester.
type Monitor struct {
	req Requester

	mu        sync.Mutex
	cfg       Config
	guardRefs int
	guardDirty bool

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a stopped Monitor.
func New(req Requester) *Monitor {
	return &Monitor{
		req:  req,
		wake: make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine. Calling Start on an already
// running Monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.run(runCtx)
}

// Stop cancels the polling goroutine and waits for it to exit. A no-op if
// the monitor isn't running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// signalWake collapses repeated reconfigure signals into a single pending
// wake, the same role asyncio.Event plays in the reference loop.
func (m *Monitor) signalWake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// reconfigure is called whenever PollInterval or one of the per-object
// interval maps changes. It mirrors _system_monitor_reconfigure: if no
// Configure() guard is currently held, it wakes the loop immediately;
// otherwise it marks the change to be committed when the outermost guard
// releases.
func (m *Monitor) reconfigure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.guardRefs == 0 {
		m.signalWake()
	} else {
		m.guardDirty = true
	}
}

// Configure returns a release function implementing the batch-commit drop
// guard: call it (typically via defer) after making one or more SetXxx
// calls, and the loop wakes at most once for the whole batch, even across
// nested Configure() calls.
func (m *Monitor) Configure() func() {
	m.mu.Lock()
	m.guardRefs++
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.guardRefs--
		if m.guardRefs == 0 && m.guardDirty {
			m.guardDirty = false
			m.signalWake()
		}
		m.mu.Unlock()
	}
}

// SetPollInterval changes how often system changes are polled.
func (m *Monitor) SetPollInterval(interval time.Duration) {
	m.mu.Lock()
	changed := m.cfg.PollInterval != interval
	m.cfg.PollInterval = interval
	m.mu.Unlock()
	if changed {
		m.reconfigure()
	}
}

// SetZoneTemperature replaces the zone-temperature polling schedule
// wholesale; a nil map clears it. Reports whether anything changed.
func (m *Monitor) SetZoneTemperature(zones map[int]time.Duration) bool {
	m.mu.Lock()
	changed := !equalIntervalMaps(m.cfg.ZoneTemperature, zones)
	if changed {
		m.cfg.ZoneTemperature = cloneIntervalMap(zones)
	}
	m.mu.Unlock()
	if changed {
		m.reconfigure()
	}
	return changed
}

// SetOutputPower replaces the output-power polling schedule wholesale; a
// nil map clears it. Reports whether anything changed.
func (m *Monitor) SetOutputPower(outputs map[int]time.Duration) bool {
	m.mu.Lock()
	changed := !equalIntervalMaps(m.cfg.OutputPower, outputs)
	if changed {
		m.cfg.OutputPower = cloneIntervalMap(outputs)
	}
	m.mu.Unlock()
	if changed {
		m.reconfigure()
	}
	return changed
}

// ZoneTemperatureInterval returns the configured poll interval for zone,
// and false if it isn't monitored.
func (m *Monitor) ZoneTemperatureInterval(zone int) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.cfg.ZoneTemperature[zone]
	return d, ok
}

// OutputPowerInterval returns the configured poll interval for output, and
// false if it isn't monitored.
func (m *Monitor) OutputPowerInterval(output int) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.cfg.OutputPower[output]
	return d, ok
}

func cloneIntervalMap(m map[int]time.Duration) map[int]time.Duration {
	if m == nil {
		return nil
	}
	out := make(map[int]time.Duration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func equalIntervalMaps(a, b map[int]time.Duration) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// loopState is the goroutine-local polling schedule, rebuilt from cfg
// every time reconfigure fires.
type loopState struct {
	pollInterval time.Duration
	pollLast     time.Time

	tempInterval map[int]time.Duration
	tempLast     map[int]time.Time

	powerInterval map[int]time.Duration
	powerLast     map[int]time.Time
}

func newLoopState() *loopState {
	return &loopState{
		tempInterval:  map[int]time.Duration{},
		tempLast:      map[int]time.Time{},
		powerInterval: map[int]time.Duration{},
		powerLast:     map[int]time.Time{},
	}
}

// applyConfig reconciles the loop's live schedule against cfg, resetting a
// key's "last polled" timestamp to force an immediate poll whenever its
// interval is new or has changed, and dropping keys no longer present.
func (s *loopState) applyConfig(cfg Config) {
	if s.pollInterval != cfg.PollInterval {
		s.pollInterval = cfg.PollInterval
		s.pollLast = time.Time{}
	}

	for zone, interval := range cfg.ZoneTemperature {
		if cur, ok := s.tempInterval[zone]; !ok || cur != interval {
			s.tempInterval[zone] = interval
			s.tempLast[zone] = time.Time{}
		}
	}
	for zone := range s.tempInterval {
		if _, ok := cfg.ZoneTemperature[zone]; !ok {
			delete(s.tempInterval, zone)
			delete(s.tempLast, zone)
		}
	}

	for output, interval := range cfg.OutputPower {
		if cur, ok := s.powerInterval[output]; !ok || cur != interval {
			s.powerInterval[output] = interval
			s.powerLast[output] = time.Time{}
		}
	}
	for output := range s.powerInterval {
		if _, ok := cfg.OutputPower[output]; !ok {
			delete(s.powerInterval, output)
			delete(s.powerLast, output)
		}
	}
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)
	log.Debug("system monitor: starting")

	state := newLoopState()
	reconfigure := true

	for {
		select {
		case <-ctx.Done():
			log.Debug("system monitor: finished")
			return
		default:
		}

		if reconfigure {
			reconfigure = false
			m.mu.Lock()
			cfg := m.cfg.clone()
			m.mu.Unlock()
			state.applyConfig(cfg)
			log.WithFields(log.Fields{
				"poll_interval": state.pollInterval,
				"temp_zones":    len(state.tempInterval),
				"power_outputs": len(state.powerInterval),
			}).Debug("system monitor: reconfigured")
		}

		sleep, err := m.pollOnce(ctx, state)
		if err != nil {
			continue
		}

		if sleep <= 0 {
			log.Warn("system monitor: polling interval too short, consider a longer one")
			continue
		}

		select {
		case <-ctx.Done():
			log.Debug("system monitor: finished")
			return
		case <-time.After(sleep):
		case <-m.wake:
			reconfigure = true
		}
	}
}

const maxSleep = time.Hour

// pollOnce runs one scheduling pass: issues whichever reads are due and
// returns how long the loop may sleep before the next one is due. The
// first request error aborts the pass (its caller treats this the same
// way the reference's outer try/except does — swallow and immediately
// retry on the next iteration rather than propagate).
func (m *Monitor) pollOnce(ctx context.Context, s *loopState) (time.Duration, error) {
	sleep := maxSleep
	now := time.Now()

	if s.pollInterval > 0 {
		if now.Sub(s.pollLast) > s.pollInterval {
			s.pollLast = now
			events, err := m.req.PollSystemChanges(ctx)
			if err != nil {
				return 0, err
			}
			for _, event := range events {
				if err := m.req.PollEvent(ctx, event); err != nil {
					return 0, err
				}
			}
		}
		sleep = clampSleep(s.pollLast.Add(s.pollInterval), sleep)
	}

	for zone, interval := range s.tempInterval {
		if interval <= 0 {
			continue
		}
		if time.Since(s.tempLast[zone]) > interval {
			s.tempLast[zone] = time.Now()
			if err := m.req.PollZoneTemperature(ctx, zone); err != nil {
				return 0, err
			}
		}
		sleep = clampSleep(s.tempLast[zone].Add(interval), sleep)
	}

	for output, interval := range s.powerInterval {
		if interval <= 0 {
			continue
		}
		if time.Since(s.powerLast[output]) > interval {
			s.powerLast[output] = time.Now()
			if err := m.req.PollOutputPower(ctx, output); err != nil {
				return 0, err
			}
		}
		sleep = clampSleep(s.powerLast[output].Add(interval), sleep)
	}

	return sleep, nil
}

func clampSleep(next time.Time, sleep time.Duration) time.Duration {
	remaining := time.Until(next)
	if remaining < 0 {
		remaining = 0
	}
	if remaining < sleep {
		return remaining
	}
	return sleep
}
