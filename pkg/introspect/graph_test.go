package introspect_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactivego/streams/pkg/introspect"
)

// linearNode is a minimal component with one predecessor and one
// successor, used to exercise the ordinary chain-walking path.
type linearNode struct {
	id         string
	up, down   any
	terminated bool
	cancelled  bool
}

func (n *linearNode) Upstream() any           { return n.up }
func (n *linearNode) Downstream() any         { return n.down }
func (n *linearNode) Name() string            { return n.id }
func (n *linearNode) TraceOnly() bool         { return false }
func (n *linearNode) IntrospectID() string    { return n.id }
func (n *linearNode) IsStarted() bool         { return true }
func (n *linearNode) IsTerminated() bool      { return n.terminated }
func (n *linearNode) IsCancelled() bool       { return n.cancelled }
func (n *linearNode) RequestedFromDownstream() int64 { return 5 }

func TestScanLinearChain(t *testing.T) {
	src := &linearNode{id: "source"}
	mid := &linearNode{id: "map", up: src}
	src.down = mid
	sink := &linearNode{id: "sink", up: mid}
	mid.down = sink

	g := introspect.Scan(mid)
	require.NotNil(t, g)
	assert.False(t, g.IsCyclic())

	ids := map[string]bool{}
	for _, n := range g.Nodes() {
		ids[n.ID()] = true
	}
	assert.True(t, ids["source"])
	assert.True(t, ids["map"])
	assert.True(t, ids["sink"])

	var foundSourceToMid, foundMidToSink bool
	for _, e := range g.Edges() {
		if e.From == "source" && e.To == "map" {
			foundSourceToMid = true
		}
		if e.From == "map" && e.To == "sink" {
			foundMidToSink = true
		}
	}
	assert.True(t, foundSourceToMid)
	assert.True(t, foundMidToSink)
}

// fanInNode is a minimal component with two predecessors, used to
// exercise the MultiUpstream walking path (e.g. a combiner).
type fanInNode struct {
	id  string
	ups []any
}

func (n *fanInNode) Upstreams() []any     { return n.ups }
func (n *fanInNode) Name() string         { return n.id }
func (n *fanInNode) TraceOnly() bool      { return false }
func (n *fanInNode) IntrospectID() string { return n.id }

func TestScanFanInMultiUpstream(t *testing.T) {
	p := &linearNode{id: "primary"}
	o := &linearNode{id: "other"}
	combiner := &fanInNode{id: "combiner", ups: []any{p, o}}

	g := introspect.Scan(combiner)
	require.NotNil(t, g)

	ids := map[string]bool{}
	for _, n := range g.Nodes() {
		ids[n.ID()] = true
	}
	assert.True(t, ids["primary"])
	assert.True(t, ids["other"])
	assert.True(t, ids["combiner"])

	var foundPrimary, foundOther bool
	for _, e := range g.Edges() {
		if e.From == "primary" && e.To == "combiner" {
			foundPrimary = true
		}
		if e.From == "other" && e.To == "combiner" {
			foundOther = true
		}
	}
	assert.True(t, foundPrimary)
	assert.True(t, foundOther)
}

func TestScanDetectsCycle(t *testing.T) {
	a := &linearNode{id: "a"}
	b := &linearNode{id: "b"}
	a.down = b
	b.up = a
	b.down = a
	a.up = b

	g := introspect.Scan(a)
	require.NotNil(t, g)
	assert.True(t, g.IsCyclic())
}

func TestVirtualReferenceNode(t *testing.T) {
	src := &linearNode{id: "source", down: "external-sink"}

	g := introspect.Subscan(src)
	require.NotNil(t, g)

	var refNode *introspect.Node
	for _, n := range g.Nodes() {
		if n.ID() == "external-sink" {
			refNode = n
		}
	}
	require.NotNil(t, refNode)
	assert.True(t, refNode.IsReference())

	var refEdge *introspect.Edge
	for _, e := range g.Edges() {
		if e.To == "external-sink" {
			refEdge = e
		}
	}
	require.NotNil(t, refEdge)
	assert.Equal(t, introspect.EdgeReference, refEdge.Type)
}

func TestRemoveTerminatedNodes(t *testing.T) {
	src := &linearNode{id: "source", terminated: true, cancelled: true}
	sink := &linearNode{id: "sink", up: src, terminated: false, cancelled: false}
	src.down = sink

	g := introspect.Scan(sink)
	require.NotNil(t, g)

	removed := g.RemoveTerminatedNodes()
	assert.Contains(t, removed, "source")

	for _, n := range g.Nodes() {
		assert.NotEqual(t, "source", n.ID())
	}
}

func TestNodeJSONOmitsUnknownAndSerializesKnown(t *testing.T) {
	src := &linearNode{id: "source"}
	g := introspect.Scan(src)
	require.NotNil(t, g)

	b, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))

	nodes, ok := decoded["nodes"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, nodes)

	first := nodes[0].(map[string]any)
	assert.NotContains(t, first, "capacity", "unknown Backpressurable capacity must be omitted")
	assert.NotContains(t, first, "period", "unknown Timeable period must be omitted")
	assert.Equal(t, float64(5), first["requestedDownstream"])
}
