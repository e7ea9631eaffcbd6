package introspect

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/reactivego/streams/pkg/reactive"
)

const unknown = int64(-1)

// unbounded mirrors reactive.Unbounded: the sentinel that serializes
// as the literal string "unbounded" instead of a number.
const unbounded = int64(math.MaxInt64)

func init() {
	// Fail loudly at package init if the two sentinels ever drift, since
	// the JSON emission rule depends on them being identical.
	if reactive.Unbounded != unbounded {
		panic("introspect: unbounded sentinel out of sync with pkg/reactive")
	}
}

// Node is one vertex of an introspected graph: either a concrete
// object probed for capabilities, or a reference stub standing in for
// a string-identified external sink.
type Node struct {
	id     string
	name   string
	rootID string
	object any // nil for a reference node
}

func newNode(name, id string, object any, rootID string) *Node {
	if rootID == "" {
		rootID = id
	}
	return &Node{id: id, name: name, rootID: rootID, object: object}
}

// ID returns the node's graph identifier.
func (n *Node) ID() string { return n.id }

// IsReference reports whether this is a virtual stub node standing in
// for a string-identified external sink rather than a live object.
func (n *Node) IsReference() bool { return n.object == nil }

func (n *Node) capacity() int64 {
	if b, ok := n.object.(Backpressurable); ok {
		return b.Capacity()
	}
	return unknown
}

func (n *Node) buffered() int64 {
	if b, ok := n.object.(Backpressurable); ok {
		return b.Buffered()
	}
	return unknown
}

func (n *Node) upstreamLimit() int64 {
	if p, ok := n.object.(Prefetchable); ok {
		return p.UpstreamLimit()
	}
	return unknown
}

func (n *Node) expectedUpstream() int64 {
	if p, ok := n.object.(Prefetchable); ok {
		return p.ExpectedFromUpstream()
	}
	return unknown
}

func (n *Node) requestedDownstream() int64 {
	if r, ok := n.object.(Requestable); ok {
		return r.RequestedFromDownstream()
	}
	return unknown
}

func (n *Node) period() int64 {
	if t, ok := n.object.(Timeable); ok {
		return t.Period()
	}
	return unknown
}

func (n *Node) failedState() string {
	if f, ok := n.object.(Failed); ok {
		if err := f.FailedState(); err != nil {
			return err.Error()
		}
	}
	return ""
}

// IsActive reports whether the node has started, or nil when it
// declares no Completable capability.
func (n *Node) IsActive() *bool {
	c, ok := n.object.(Completable)
	if !ok {
		return nil
	}
	v := c.IsStarted()
	return &v
}

// IsTerminated reports whether the node has reached a terminal
// signal, or nil when it declares no Completable capability.
func (n *Node) IsTerminated() *bool {
	c, ok := n.object.(Completable)
	if !ok {
		return nil
	}
	v := c.IsTerminated()
	return &v
}

// IsCancelled reports whether the node has been cancelled, or nil
// when it declares no Cancellable capability.
func (n *Node) IsCancelled() *bool {
	c, ok := n.object.(Cancellable)
	if !ok {
		return nil
	}
	v := c.IsCancelled()
	return &v
}

func numeric(v int64) json.RawMessage {
	switch v {
	case unknown:
		return nil
	case unbounded:
		return json.RawMessage(`"unbounded"`)
	default:
		return json.RawMessage(fmt.Sprintf("%d", v))
	}
}

type nodeJSON struct {
	ID                  string          `json:"id"`
	Origin              string          `json:"origin,omitempty"`
	Name                string          `json:"name,omitempty"`
	Reference           bool            `json:"reference,omitempty"`
	Failed              string          `json:"failed,omitempty"`
	Period              json.RawMessage `json:"period,omitempty"`
	Capacity            json.RawMessage `json:"capacity,omitempty"`
	Buffered            json.RawMessage `json:"buffered,omitempty"`
	UpstreamLimit       json.RawMessage `json:"upstreamLimit,omitempty"`
	ExpectedUpstream    json.RawMessage `json:"expectedUpstream,omitempty"`
	RequestedDownstream json.RawMessage `json:"requestedDownstream,omitempty"`
	Active              *bool           `json:"active,omitempty"`
	Terminated          *bool           `json:"terminated,omitempty"`
	Cancelled           *bool           `json:"cancelled,omitempty"`
}

// MarshalJSON implements the sparse serialization rule from spec
// §4.8: unknown numeric attributes are omitted, and the unbounded
// sentinel serializes as the literal string "unbounded".
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsReference() {
		return json.Marshal(nodeJSON{
			ID:        n.id,
			Origin:    n.rootID,
			Name:      n.name,
			Reference: true,
		})
	}
	return json.Marshal(nodeJSON{
		ID:                  n.id,
		Origin:              n.rootID,
		Name:                n.name,
		Failed:              n.failedState(),
		Period:              numeric(n.period()),
		Capacity:            numeric(n.capacity()),
		Buffered:            numeric(n.buffered()),
		UpstreamLimit:       numeric(n.upstreamLimit()),
		ExpectedUpstream:    numeric(n.expectedUpstream()),
		RequestedDownstream: numeric(n.requestedDownstream()),
		Active:              n.IsActive(),
		Terminated:          n.IsTerminated(),
		Cancelled:           n.IsCancelled(),
	})
}
