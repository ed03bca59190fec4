// Package lifecycle binds box definitions to the host's edit-screen
// events. The host fires a show event when it renders an editor page
// and a save event when a submission arrives; registered boxes react
// through an explicit subscription table instead of global hook state.
package lifecycle

import (
	"context"
	"io"
	"sync"

	"github.com/cyberwani/metabox/pkg/persist"
	"github.com/cyberwani/metabox/pkg/render"
)

// Event is one host notification. Show events carry a Render request,
// save events carry the parsed Submission.
type Event struct {
	Name       string
	ItemID     int64
	ItemType   string
	Render     *RenderRequest
	Submission *persist.Submission
}

// RenderRequest carries the value sources for a show event and the
// sink the box markup is written to.
type RenderRequest struct {
	Context render.Context
	Out     io.Writer
}

// HandlerFunc reacts to one event.
type HandlerFunc func(ctx context.Context, e Event) error

// Dispatcher is the subscription half of the event table. The
// controller only ever subscribes; firing stays with the host.
type Dispatcher interface {
	Subscribe(event string, handler HandlerFunc)
}

// EventTable is an in-memory Dispatcher. Handlers run in subscription
// order; the first error stops the chain.
type EventTable struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewEventTable builds an empty EventTable.
func NewEventTable() *EventTable {
	return &EventTable{handlers: make(map[string][]HandlerFunc)}
}

// Subscribe appends a handler for the named event.
func (t *EventTable) Subscribe(event string, handler HandlerFunc) {
	if handler == nil {
		return
	}
	t.mu.Lock()
	t.handlers[event] = append(t.handlers[event], handler)
	t.mu.Unlock()
}

// Fire runs every handler subscribed to e.Name.
func (t *EventTable) Fire(ctx context.Context, e Event) error {
	t.mu.RLock()
	handlers := t.handlers[e.Name]
	t.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
