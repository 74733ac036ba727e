package tilemap

import "fmt"

// Category selects one of the ordered tile collections of a Map.
type Category int

const (
	// Basic tiles are the visible map content.
	Basic Category = iota
	// Spawn tiles mark spawn points. They are drawn only in authoring mode.
	Spawn
	// Event tiles mark event points. They are drawn only in authoring mode.
	Event

	categoryCount
)

// Categories lists every category in save-file order.
var Categories = []Category{Basic, Spawn, Event}

func (c Category) String() string {
	switch c {
	case Basic:
		return "basic"
	case Spawn:
		return "spawn"
	case Event:
		return "event"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

func (c Category) valid() bool {
	return c >= Basic && c < categoryCount
}
