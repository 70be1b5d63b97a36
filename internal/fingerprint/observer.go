package fingerprint

import (
	"log/slog"

	"github.com/openmined/dirdiff/internal/digest"
)

type EventType uint8

const (
	EventFileHashed EventType = iota + 1
	EventDirHashed
	EventSkipped
	EventUnsupported
)

func (t EventType) String() string {
	switch t {
	case EventFileHashed:
		return "file_hashed"
	case EventDirHashed:
		return "dir_hashed"
	case EventSkipped:
		return "skipped"
	case EventUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Event reports progress of a walk.
type Event struct {
	Type EventType
	// Root is the root passed to Fingerprint.
	Root   string
	Path   string
	Digest digest.Digest
	// Size is the byte count for files.
	Size int64
	// Children is the direct child count for directories.
	Children int
}

// Observer receives walk events. Observe is called from many goroutines at once.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Observers fans events out to every non-nil observer.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nopObserver{}
	}
	return out
}

// SlogObserver logs walk events to logger.
type SlogObserver struct {
	logger *slog.Logger
}

func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) Observe(e Event) {
	switch e.Type {
	case EventFileHashed:
		o.logger.Debug("file hashed", "path", e.Path, "size", e.Size)
	case EventDirHashed:
		o.logger.Debug("dir parsed", "path", e.Path, "children", e.Children)
	case EventSkipped:
		o.logger.Debug("excluded", "path", e.Path)
	case EventUnsupported:
		o.logger.Warn("unsupported entry recorded with empty digest", "path", e.Path)
	}
}
