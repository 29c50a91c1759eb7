package watcher

type EventKind int

const (
	// EventCreate covers files moved into a watched directory as well.
	EventCreate EventKind = iota + 1
	EventModify
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	default:
		return "unknown"
	}
}

type EventsChannel <-chan Event

type Event struct {
	Kind  EventKind
	Path  string
	Name  string
	IsDir bool
}
