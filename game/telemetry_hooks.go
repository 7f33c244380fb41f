package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/gravwell/components"
	"github.com/pthm-cable/gravwell/systems"
	"github.com/pthm-cable/gravwell/telemetry"
)

func (s *Session) startTick() {
	if s.perf != nil {
		s.perf.StartTick()
	}
}

func (s *Session) startPhase(phase string) {
	if s.perf != nil {
		s.perf.StartPhase(phase)
	}
}

func (s *Session) endTick() {
	if s.perf != nil {
		s.perf.EndTick()
	}
}

// recordTelemetry feeds one tick's output to the collector and event log,
// then flushes the stats window if it has elapsed.
func (s *Session) recordTelemetry(out *TickOutput) {
	if s.collector != nil {
		s.collect(out)
	}
	if s.output != nil {
		if err := s.output.WriteEvents(s.eventRows(out)); err != nil {
			slog.Error("failed to write events", "error", err)
		}
	}
	s.flushTelemetry(out)
}

func (s *Session) collect(out *TickOutput) {
	c := s.collector
	for _, ev := range out.Consumptions {
		switch ev.Result.Kind {
		case systems.ConsumeGrow:
			c.RecordGrow()
		case systems.ConsumeShrink:
			c.RecordShrink()
		}
	}
	for _, sc := range out.Scores {
		c.RecordPoints(sc.Delta)
	}
	for range out.Merges {
		c.RecordMerge()
	}
	for _, pu := range out.PowerUps {
		switch pu.Type {
		case PowerUpSpawnRequested:
			c.RecordPowerUpSpawn()
		case PowerUpActivated:
			c.RecordPowerUpCollected(pu.Kind)
		}
	}
	for _, ch := range out.Changes {
		if ch.Reason == ChangeHostRemoved {
			c.RecordHostRemoval()
		}
	}
	for _, a := range out.Anomalies {
		if a.Kind == AnomalyMergeRejected {
			c.RecordMergeRejected()
			continue
		}
		c.RecordAnomaly()
	}
	if well, ok := s.Well(); ok {
		c.SampleWell(well.Diameter())
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Session) flushTelemetry(out *TickOutput) {
	if s.collector == nil {
		return
	}
	// The final window is flushed early so a session end is never lost
	if !s.collector.ShouldFlush(s.now) && out.Ended == nil {
		return
	}

	stats := s.collector.Flush(telemetry.Snapshot{
		Tick:        s.tick,
		Now:         s.now,
		Consumables: s.registry.ConsumableCount(),
		Score:       s.score.Total(),
		HighScore:   s.score.High(),
		MergeLive:   s.merge.Counter().Live,
	})

	if s.onStats != nil {
		s.onStats(stats)
	}

	var perfStats telemetry.PerfStats
	if s.perf != nil {
		perfStats = s.perf.Stats()
	}

	if s.logStats {
		stats.LogStats()
		if s.perf != nil {
			perfStats.LogStats()
		}
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if s.perf != nil {
			if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}
}

// eventRows converts the notable parts of a tick into events.csv rows.
func (s *Session) eventRows(out *TickOutput) []telemetry.Event {
	var rows []telemetry.Event
	tick, now := out.Tick, out.Now

	for _, ev := range out.Consumptions {
		detail := ev.Result.Kind.String()
		if ev.Result.Fatal != systems.EndNone {
			detail = ev.Result.Fatal.String()
		}
		rows = append(rows, telemetry.NewConsumeEvent(tick, now, ev.ConsumableID, detail, ev.Result.NewDiameter))
	}
	for _, m := range out.Merges {
		rows = append(rows, telemetry.NewMergeEvent(tick, now, m.ResultID, s.className(m.Class), m.Diameter))
	}
	for _, pu := range out.PowerUps {
		rows = append(rows, telemetry.NewPowerUpEvent(tick, now, pu.Kind, pu.Type.String(), pu.Expiry))
	}
	if out.TargetChanged != nil {
		rows = append(rows, telemetry.NewTargetEvent(tick, now, s.className(*out.TargetChanged)))
	}
	for _, a := range out.Anomalies {
		var id components.BodyID
		if len(a.IDs) > 0 {
			id = a.IDs[0]
		}
		detail := a.Kind.String()
		if a.Err != nil {
			detail += ": " + reasonOf(a.Err)
		}
		rows = append(rows, telemetry.NewAnomalyEvent(tick, now, id, detail))
	}
	if out.Ended != nil {
		rows = append(rows, telemetry.NewEndEvent(tick, now, out.Ended.Reason.String(), out.Ended.Score))
	}
	return rows
}

// reasonOf returns the innermost error text, which is the stable sentinel for guards.
func reasonOf(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (s *Session) className(c components.ClassID) string {
	if int(c) < len(s.cfg.Classes) {
		return s.cfg.Classes[c].Name
	}
	return "unknown"
}
