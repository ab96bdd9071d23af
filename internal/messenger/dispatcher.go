package messenger

import (
	"context"
	"sort"
	"strings"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/binding"
)

// Dispatcher selects the resource binding owning a routing key. Bindings are
// registered against a key prefix; the longest matching prefix wins so the
// signup and comment topics take precedence over the bare event topic.
type Dispatcher struct {
	prefixes []string
	bindings map[string]binding.Binding
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{bindings: make(map[string]binding.Binding)}
}

// Register binds a routing-key prefix to a binding.
func (d *Dispatcher) Register(prefix string, b binding.Binding) {
	if _, exists := d.bindings[prefix]; !exists {
		d.prefixes = append(d.prefixes, prefix)
		sort.Slice(d.prefixes, func(i, j int) bool {
			return len(d.prefixes[i]) > len(d.prefixes[j])
		})
	}
	d.bindings[prefix] = b
}

// Dispatch routes one validated message to its binding and returns the
// binding's response, or nil when the key matches no binding or the binding
// produced no response.
func (d *Dispatcher) Dispatch(ctx context.Context, routingKey string, raw []byte) any {
	for _, prefix := range d.prefixes {
		if strings.HasPrefix(routingKey, prefix) {
			return d.bindings[prefix].Handle(ctx, raw)
		}
	}
	return nil
}

// Matches reports whether any registered binding owns the routing key.
func (d *Dispatcher) Matches(routingKey string) bool {
	for _, prefix := range d.prefixes {
		if strings.HasPrefix(routingKey, prefix) {
			return true
		}
	}
	return false
}
