package event

import "time"

// snapshotState drives the periodic snapshot feature: fire a snapshot
// every SnapshotInterval of wall-clock time, independent of motion. The
// modulo-rollover test mirrors the original's
// time_current_frame % interval <= time_last_frame % interval check so a
// slow frame never causes a missed snapshot tick.
type snapshotState struct {
	last time.Time
}

// Check reports whether a snapshot tick has elapsed since the last call.
// interval <= 0 disables the feature.
func (s *snapshotState) Check(now time.Time, interval time.Duration) (time.Time, bool) {
	if interval <= 0 {
		return time.Time{}, false
	}
	if s.last.IsZero() {
		s.last = now
		return time.Time{}, false
	}
	prevMod := s.last.UnixNano() % int64(interval)
	curMod := now.UnixNano() % int64(interval)
	fired := curMod <= prevMod && now.After(s.last)
	s.last = now
	if fired {
		return now, true
	}
	return time.Time{}, false
}
