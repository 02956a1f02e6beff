package core

import "fmt"

// EventType classifies a change observed on a collection file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event is a change notification for a collection, including changes made by
// other processes sharing the same data directory.
type Event struct {
	Type       EventType
	Collection string
	Timestamp  int64 // Unix timestamp
}

// String renders the event for logs and the watch CLI.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Collection)
}
