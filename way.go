package osmlinks

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Way is a logical OSM way reassembled from its representative edges
type Way struct {
	ID      osm.WayID
	Highway HighwayType
	// Representative edges in ascending order of identifiers
	Edges        []EdgeID
	LengthMeters float64

	// Boundary nodes of the whole way (not of its constituent edges)
	StartNodeID NodeID
	EndNodeID   NodeID
	// Way edges adjacent to boundary nodes: used for headings
	startEdgeID EdgeID
	endEdgeID   EdgeID
	// False for closed or broken ways
	hasBoundary bool
}

// Contains checks if edge (or its reverse twin) belongs to the way
func (way *Way) Contains(id EdgeID) bool {
	id = id.Representative()
	idx := sort.Search(len(way.Edges), func(i int) bool { return way.Edges[i] >= id })
	return idx < len(way.Edges) && way.Edges[idx] == id
}

// HasBoundary returns false when way is closed (or malformed) and has no distinct start and end nodes
func (way *Way) HasBoundary() bool {
	return way.hasBoundary
}

// Geometry returns geometries of way's edges
func (way *Way) Geometry(graph RoadGraph) orb.MultiLineString {
	result := make(orb.MultiLineString, 0, len(way.Edges))
	for _, id := range way.Edges {
		if edge, ok := graph.Edge(id); ok && len(edge.Geom) > 0 {
			result = append(result, edge.Geom)
		}
	}
	return result
}

// findBoundary detects boundary nodes using balance of incoming and outcoming way edges per node.
// Choice is made on identifiers only, so it does not depend on the edge assembling started from
func (way *Way) findBoundary(edges []*Edge) {
	balance := make(map[NodeID]int, len(edges)+1)
	for _, edge := range edges {
		balance[edge.SourceNodeID]++
		balance[edge.TargetNodeID]--
	}
	startFound, endFound := false, false
	for nodeID, value := range balance {
		if value > 0 && (!startFound || nodeID < way.StartNodeID) {
			way.StartNodeID = nodeID
			startFound = true
		}
		if value < 0 && (!endFound || nodeID < way.EndNodeID) {
			way.EndNodeID = nodeID
			endFound = true
		}
	}
	if !startFound || !endFound {
		return
	}
	// Edges are sorted already, so the first match is the one with the smallest identifier
	startEdgeFound, endEdgeFound := false, false
	for _, edge := range edges {
		if !startEdgeFound && edge.SourceNodeID == way.StartNodeID {
			way.startEdgeID = edge.ID
			startEdgeFound = true
		}
		if !endEdgeFound && edge.TargetNodeID == way.EndNodeID {
			way.endEdgeID = edge.ID
			endEdgeFound = true
		}
	}
	way.hasBoundary = startEdgeFound && endEdgeFound
}
