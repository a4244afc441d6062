package multiclient

import "github.com/zephyrnaut/euphoxide-go/client"

// Event is a child Client's Event tagged with the key it was added under,
// so a single aggregated stream can be told apart by room/identity.
type Event[K comparable] struct {
	Key K
	client.Event
}
