package introspect

import (
	"encoding/json"
	"time"
)

// Graph is the "nodes and edges" representation of a live pipeline
// produced by Scan or Subscan, per spec §4.8.
type Graph struct {
	nodes map[string]*Node
	edges map[string]*Edge

	subscan bool
	trace   bool
	cyclic  bool
}

func newGraph(subscan, trace bool) *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string]*Edge),
		subscan: subscan,
		trace:   trace,
	}
}

// Scan walks both upstream and downstream from o, producing a
// complete graph of the pipeline it participates in.
func Scan(o any) *Graph { return ScanTrace(o, false) }

// ScanTrace behaves like Scan, but forces introspection of trace-only
// nodes when trace is true.
func ScanTrace(o any, trace bool) *Graph {
	if o == nil {
		return nil
	}
	g := newGraph(false, trace)
	origin := g.expand(o, "")
	g.walkUpstream(origin, nil)
	g.walkDownstream(origin, nil)
	return g
}

// Subscan walks only downstream from o, producing a graph of what o
// feeds into without following what feeds into o.
func Subscan(o any) *Graph { return SubscanTrace(o, false) }

// SubscanTrace behaves like Subscan, but forces introspection of
// trace-only nodes when trace is true.
func SubscanTrace(o any, trace bool) *Graph {
	if o == nil {
		return nil
	}
	g := newGraph(true, trace)
	root := g.expand(o, "")
	g.walkDownstream(root, nil)
	return g
}

// IsCyclic reports whether the walk detected a re-visited node.
func (g *Graph) IsCyclic() bool { return g.cyclic }

// Nodes returns the graph's current node set.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns the graph's current edge set.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// RemoveTerminatedNodes prunes nodes that are both terminated and
// cancelled (or, for reference nodes, whose every inbound edge
// originates from a terminated-and-cancelled node), returning the set
// of removed identifiers, per spec §4.8's remove_terminated_nodes. An
// ordinary node with no inbound and no outbound edge is removed too,
// whatever its state. Edges of removed nodes are left in place.
func (g *Graph) RemoveTerminatedNodes() []string {
	var removed []string

	inbound := make(map[string][]*Edge)
	for _, e := range g.edges {
		inbound[e.To] = append(inbound[e.To], e)
	}

	for id, n := range g.nodes {
		var remove bool
		if n.IsReference() {
			remove = true
			for _, e := range inbound[id] {
				src, ok := g.nodes[e.From]
				if !ok {
					continue
				}
				if !doneAndGone(src) {
					remove = false
					break
				}
			}
		} else {
			remove = doneAndGone(n)
			if !remove && len(inbound[id]) == 0 && len(outboundOf(g, id)) == 0 {
				remove = true
			}
		}
		if remove {
			delete(g.nodes, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func doneAndGone(n *Node) bool {
	terminated := n.IsTerminated()
	cancelled := n.IsCancelled()
	return terminated != nil && *terminated && cancelled != nil && *cancelled
}

func outboundOf(g *Graph, from string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

// expand builds (but does not register) a Node for o, additionally
// wiring any feedback-loop edges it declares.
func (g *Graph) expand(o any, rootID string) *Node {
	if o == nil {
		return nil
	}
	n := newNode(name(o), identify(o), o, rootID)

	if g.trace || !isTraceOnly(o) {
		if loop, ok := hasFeedbackLoop(o); ok {
			if in := loop.ConnectedInput(); in != nil && in != loop && !g.virtualRef(in, n) {
				input := g.expand(in, n.rootID)
				g.addEdge(&Edge{From: n.id, To: input.id, Type: EdgeFeedbackLoop})
				g.walkDownstream(input, nil)
			}
			if out := loop.ConnectedOutput(); out != nil && out != loop && !g.virtualRef(out, n) {
				output := g.expand(out, n.rootID)
				g.addEdge(&Edge{From: output.id, To: n.id, Type: EdgeFeedbackLoop})
				g.walkUpstream(output, nil)
			}
		}
	}

	return n
}

func (g *Graph) addEdge(e *Edge) { g.edges[e.ID()] = e }

// virtualRef stubs o as a reference node when it is a string
// identifier rather than a live component, wiring a reference edge
// from ancestor to it. Returns whether o was a virtual reference.
func (g *Graph) virtualRef(o any, ancestor *Node) bool {
	s, ok := o.(string)
	if !ok || ancestor == nil {
		return false
	}
	ref := newNode(s, s, nil, ancestor.rootID)
	edge := &Edge{From: ancestor.id, To: s, Type: EdgeReference}
	g.nodes[ref.id] = ref
	g.addEdge(edge)
	return true
}

func (g *Graph) walkUpstream(target, grandchild *Node) {
	if target == nil {
		return
	}
	var child *Node
	if g.trace || !isTraceOnly(target.object) {
		child = target
		if _, seen := g.nodes[child.id]; seen && grandchild != nil {
			g.cyclic = true
			return
		}
		g.nodes[child.id] = child
	} else {
		child = grandchild
	}

	if in, ok := hasUpstream(target.object); ok {
		if !g.virtualRef(in, target) {
			upstream := g.expand(in, target.rootID)
			if child != nil && (g.trace || !isTraceOnly(upstream.object)) {
				g.addEdge(&Edge{From: upstream.id, To: child.id})
			}
			g.walkUpstream(upstream, child)
		}
	}
	if ups, ok := hasUpstreams(target.object); ok {
		g.walkUpstreams(child, ups)
	}
	if downs, ok := hasDownstreams(target.object); ok {
		g.walkDownstreams(child, downs)
	}
}

func (g *Graph) walkUpstreams(target *Node, ins []any) {
	for _, in := range ins {
		if target != nil && g.virtualRef(in, target) {
			continue
		}
		rootID := ""
		if target != nil {
			rootID = target.rootID
		}
		source := g.expand(in, rootID)
		if target != nil && source != nil {
			g.addEdge(&Edge{From: source.id, To: target.id, Type: EdgeInner})
		}
		g.walkUpstream(source, target)
	}
}

func (g *Graph) walkDownstream(origin, ancestor *Node) {
	if origin == nil {
		return
	}
	var root *Node
	if g.trace || !isTraceOnly(origin.object) {
		root = origin
		if _, seen := g.nodes[root.id]; seen && ancestor != nil {
			g.cyclic = true
			return
		}
		g.nodes[root.id] = root
	} else {
		root = ancestor
	}

	if out, ok := hasDownstream(origin.object); ok {
		if !g.virtualRef(out, origin) {
			downstream := g.expand(out, origin.rootID)
			if root != nil && (g.trace || !isTraceOnly(downstream.object)) {
				g.addEdge(&Edge{From: root.id, To: downstream.id})
			}
			g.walkDownstream(downstream, root)
		}
	}
	if downs, ok := hasDownstreams(origin.object); ok {
		g.walkDownstreams(root, downs)
	}
	if ups, ok := hasUpstreams(origin.object); ok {
		g.walkUpstreams(root, ups)
	}
}

func (g *Graph) walkDownstreams(source *Node, outs []any) {
	for _, out := range outs {
		if source != nil && g.virtualRef(out, source) {
			continue
		}
		rootID := ""
		if source != nil {
			rootID = source.rootID
		}
		downstream := g.expand(out, rootID)
		if source != nil && downstream != nil {
			g.addEdge(&Edge{From: source.id, To: downstream.id, Type: EdgeInner})
		}
		g.walkDownstream(downstream, source)
	}
}

type graphJSON struct {
	Edges     []*Edge `json:"edges"`
	Trace     bool    `json:"trace,omitempty"`
	Nodes     []*Node `json:"nodes"`
	Full      *bool   `json:"full,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// MarshalJSON implements the {edges, nodes, trace?, full?, timestamp?}
// emission rule from spec §4.8. Timestamp is stamped by the caller
// via MarshalJSONAt; a Graph marshaled directly carries none.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return g.marshal(0)
}

// MarshalJSONAt is like MarshalJSON but includes the given time as a
// Unix milliseconds timestamp field, letting a caller stamp the snapshot time without
// this package reaching for a disallowed clock call internally.
func (g *Graph) MarshalJSONAt(at time.Time) ([]byte, error) {
	return g.marshal(at.UnixMilli())
}

func (g *Graph) marshal(timestamp int64) ([]byte, error) {
	var full *bool
	if g.subscan {
		f := false
		full = &f
	}
	return json.Marshal(graphJSON{
		Edges:     g.Edges(),
		Trace:     g.trace,
		Nodes:     g.Nodes(),
		Full:      full,
		Timestamp: timestamp,
	})
}
