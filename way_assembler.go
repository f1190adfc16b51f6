package osmlinks

import (
	"sort"

	"github.com/pkg/errors"
)

// AssembleWay collects all representative edges of the same way which are connected to the given edge.
//
// Reverse twins are collapsed into their representative edges, so result does not depend on
// which edge (or direction) of the way assembling started from
func AssembleWay(graph RoadGraph, id EdgeID) (Way, error) {
	first, ok := graph.Edge(id)
	if !ok {
		return Way{}, errors.Wrapf(ErrEdgeNotFound, "Can't assemble way for edge %d", id)
	}
	first = representativeOf(graph, first)

	visited := map[EdgeID]*Edge{first.ID: first}
	queue := []*Edge{first}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, nodeID := range [2]NodeID{current.SourceNodeID, current.TargetNodeID} {
			for _, touchingID := range graph.EdgesTouching(nodeID, DIRECTION_BOTH) {
				touching, ok := graph.Edge(touchingID)
				if !ok || touching.WayID != first.WayID {
					continue
				}
				touching = representativeOf(graph, touching)
				if _, seen := visited[touching.ID]; seen {
					continue
				}
				visited[touching.ID] = touching
				queue = append(queue, touching)
			}
		}
	}

	edges := make([]*Edge, 0, len(visited))
	for _, edge := range visited {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	way := Way{
		ID:      first.WayID,
		Highway: edges[0].Highway,
		Edges:   make([]EdgeID, len(edges)),
	}
	for i, edge := range edges {
		way.Edges[i] = edge.ID
		way.LengthMeters += edge.LengthMeters
	}
	way.findBoundary(edges)
	return way, nil
}

// representativeOf returns representative edge for reverse twin. Twin without representative is returned as is
func representativeOf(graph RoadGraph, edge *Edge) *Edge {
	if edge.Representative {
		return edge
	}
	if main, ok := graph.Edge(edge.ID.Representative()); ok && main.Representative {
		return main
	}
	return edge
}
