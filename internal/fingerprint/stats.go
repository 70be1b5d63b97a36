package fingerprint

import (
	"sync/atomic"
)

// Stats counts walk events. It is safe for concurrent use.
type Stats struct {
	files       atomic.Int64
	dirs        atomic.Int64
	unsupported atomic.Int64
	skipped     atomic.Int64
	bytes       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Files       int64
	Dirs        int64
	Unsupported int64
	Skipped     int64
	Bytes       int64
}

// Total is the number of fingerprinted entries.
func (s StatsSnapshot) Total() int64 {
	return s.Files + s.Dirs + s.Unsupported
}

func (s *Stats) Observe(e Event) {
	switch e.Type {
	case EventFileHashed:
		s.files.Add(1)
		s.bytes.Add(e.Size)
	case EventDirHashed:
		s.dirs.Add(1)
	case EventSkipped:
		s.skipped.Add(1)
	case EventUnsupported:
		s.unsupported.Add(1)
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Files:       s.files.Load(),
		Dirs:        s.dirs.Load(),
		Unsupported: s.unsupported.Load(),
		Skipped:     s.skipped.Load(),
		Bytes:       s.bytes.Load(),
	}
}
