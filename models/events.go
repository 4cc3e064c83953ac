package models

import (
	"encoding/json"
	"fmt"
)

// Real-time event names.
const (
	EventProductsUpdated = "productsUpdated" // Full catalog; sent on connect
	EventProductAdded    = "productAdded"
	EventProductUpdated  = "productUpdated"
	EventProductDeleted  = "productDeleted" // Data is the product ID
)

// Event is the envelope written to real-time clients.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// RawEvent is an Event as read back from the wire, with Data left undecoded.
type RawEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// ProductsUpdated builds the snapshot event.
func ProductsUpdated(products []Product) Event {
	if products == nil {
		products = []Product{}
	}
	return Event{Name: EventProductsUpdated, Data: products}
}

// ProductAdded builds the event for a newly created product.
func ProductAdded(p Product) Event {
	return Event{Name: EventProductAdded, Data: p}
}

// ProductUpdated builds the event for a changed product.
func ProductUpdated(p Product) Event {
	return Event{Name: EventProductUpdated, Data: p}
}

// ProductDeleted builds the event for a removed product.
func ProductDeleted(id int64) Event {
	return Event{Name: EventProductDeleted, Data: id}
}

// DecodeEvent turns a RawEvent into an Event with typed Data: []Product for
// productsUpdated, Product for productAdded and productUpdated, int64 for
// productDeleted.
func DecodeEvent(raw RawEvent) (Event, error) {
	var data any
	switch raw.Name {
	case EventProductsUpdated:
		var products []Product
		if err := json.Unmarshal(raw.Data, &products); err != nil {
			return Event{}, fmt.Errorf("decoding %s: %w", raw.Name, err)
		}
		if products == nil {
			products = []Product{}
		}
		data = products
	case EventProductAdded, EventProductUpdated:
		var p Product
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return Event{}, fmt.Errorf("decoding %s: %w", raw.Name, err)
		}
		data = p
	case EventProductDeleted:
		var id int64
		if err := json.Unmarshal(raw.Data, &id); err != nil {
			return Event{}, fmt.Errorf("decoding %s: %w", raw.Name, err)
		}
		data = id
	default:
		return Event{}, fmt.Errorf("unknown event '%s'", raw.Name)
	}
	return Event{Name: raw.Name, Data: data}, nil
}
