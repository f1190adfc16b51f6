package osmlinks

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// RoadGraph is read-only view on edges and nodes used by checks
type RoadGraph interface {
	Edge(id EdgeID) (*Edge, bool)
	Node(id NodeID) (*Node, bool)
	// EdgesTouching returns identifiers of edges entering and/or leaving the node
	EdgesTouching(id NodeID, direction DirectionType) []EdgeID
}

// Graph is an arena of edges and nodes referenced by identifiers.
//
// Graph is not safe for concurrent modification, but once built it could be shared between any number of readers
type Graph struct {
	edges map[EdgeID]*Edge
	nodes map[NodeID]*Node
}

// NewGraph returns empty graph
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[EdgeID]*Edge),
		nodes: make(map[NodeID]*Node),
	}
}

// AddNode registers node. Existing node with the same identifier is returned as is
func (graph *Graph) AddNode(id NodeID, pt orb.Point) *Node {
	if node, ok := graph.nodes[id]; ok {
		return node
	}
	node := &Node{
		ID:             id,
		Geom:           pt,
		incomingEdges:  make([]EdgeID, 0, 2),
		outcomingEdges: make([]EdgeID, 0, 2),
	}
	graph.nodes[id] = node
	return node
}

// AddEdge registers edge and attaches it to its source and target nodes.
//
// Missing nodes are tolerated: such edge just can't be reached through node adjacency
func (graph *Graph) AddEdge(edge *Edge) error {
	if edge.ID == 0 {
		return errors.New("Edge identifier must be non-zero")
	}
	if _, ok := graph.edges[edge.ID]; ok {
		return errors.Errorf("Edge %d has been added already", edge.ID)
	}
	graph.edges[edge.ID] = edge
	if source, ok := graph.nodes[edge.SourceNodeID]; ok {
		source.outcomingEdges = append(source.outcomingEdges, edge.ID)
	}
	if target, ok := graph.nodes[edge.TargetNodeID]; ok {
		target.incomingEdges = append(target.incomingEdges, edge.ID)
	}
	return nil
}

// AddTwoWayEdge registers representative edge and its reverse twin
func (graph *Graph) AddTwoWayEdge(edge *Edge) error {
	edge.Representative = true
	err := graph.AddEdge(edge)
	if err != nil {
		return err
	}
	return graph.AddEdge(edge.reversed())
}

func (graph *Graph) Edge(id EdgeID) (*Edge, bool) {
	edge, ok := graph.edges[id]
	return edge, ok
}

func (graph *Graph) Node(id NodeID) (*Node, bool) {
	node, ok := graph.nodes[id]
	return node, ok
}

func (graph *Graph) EdgesTouching(id NodeID, direction DirectionType) []EdgeID {
	node, ok := graph.nodes[id]
	if !ok {
		return nil
	}
	switch direction {
	case DIRECTION_INCOMING:
		return node.incomingEdges
	case DIRECTION_OUTCOMING:
		return node.outcomingEdges
	default:
		result := make([]EdgeID, 0, len(node.incomingEdges)+len(node.outcomingEdges))
		result = append(result, node.incomingEdges...)
		result = append(result, node.outcomingEdges...)
		return result
	}
}

// EdgeIDs returns identifiers of all edges in ascending order
func (graph *Graph) EdgeIDs() []EdgeID {
	ids := make([]EdgeID, 0, len(graph.edges))
	for id := range graph.edges {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (graph *Graph) NumEdges() int {
	return len(graph.edges)
}

func (graph *Graph) NumNodes() int {
	return len(graph.nodes)
}
