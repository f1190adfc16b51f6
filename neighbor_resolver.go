package osmlinks

import (
	"math"
	"sort"
)

// EndpointType Role of boundary node in the way
type EndpointType uint16

const (
	ENDPOINT_START = EndpointType(iota)
	ENDPOINT_END
)

func (iotaIdx EndpointType) String() string {
	return [...]string{"start", "end"}[iotaIdx]
}

// neighborResolver picks the road the way continues into at one of its boundary nodes
type neighborResolver struct {
	graph RoadGraph
	table *RoadClassTable
	// Maximum heading deviation (degrees) for the candidate to be treated as continuation
	forwardBand float64
}

type neighborCandidate struct {
	edge       *Edge
	deviation  float64
	hasHeading bool
}

// resolveEndpoint returns class of the best continuing neighbor for the given endpoint of the way.
//
// Start node accepts edges entering it and end node accepts edges leaving it. Edges of the way itself are never candidates
func (resolver *neighborResolver) resolveEndpoint(way *Way, endpoint EndpointType) (HighwayType, bool) {
	candidates := resolver.collectCandidates(way, endpoint)
	switch len(candidates) {
	case 0:
		return HIGHWAY_UNDEFINED, false
	case 1:
		return candidates[0].edge.Highway, true
	}

	wayHeading, ok := resolver.wayHeading(way, endpoint)
	if !ok {
		// Degenerate geometry: heading continuity can't be measured, so the most important road wins
		best := candidates[0]
		for _, candidate := range candidates[1:] {
			if resolver.table.MoreImportant(candidate.edge.Highway, best.edge.Highway) {
				best = candidate
			}
		}
		return best.edge.Highway, true
	}

	var best *neighborCandidate
	for i := range candidates {
		candidate := &candidates[i]
		candidate.deviation, candidate.hasHeading = candidateDeviation(candidate.edge, wayHeading, endpoint)
		if !candidate.hasHeading || candidate.deviation > resolver.forwardBand {
			continue
		}
		// Candidates are sorted by identifier, so strict comparison keeps the first one on ties
		if best == nil || candidate.deviation < best.deviation {
			best = candidate
		}
	}
	if best == nil {
		return HIGHWAY_UNDEFINED, false
	}
	return best.edge.Highway, true
}

// collectCandidates returns representative-deduplicated edges touching the endpoint in ascending order of edge identifiers
func (resolver *neighborResolver) collectCandidates(way *Way, endpoint EndpointType) []neighborCandidate {
	nodeID, direction := way.StartNodeID, DIRECTION_INCOMING
	if endpoint == ENDPOINT_END {
		nodeID, direction = way.EndNodeID, DIRECTION_OUTCOMING
	}
	touching := resolver.graph.EdgesTouching(nodeID, direction)
	if len(touching) == 0 {
		return nil
	}
	seen := make(map[EdgeID]struct{}, len(touching))
	candidates := make([]neighborCandidate, 0, len(touching))
	for _, id := range touching {
		edge, ok := resolver.graph.Edge(id)
		if !ok || edge.WayID == way.ID || way.Contains(id) {
			continue
		}
		key := id.Representative()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, neighborCandidate{edge: edge, deviation: math.Inf(1)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].edge.ID < candidates[j].edge.ID
	})
	return candidates
}

// wayHeading returns heading of the way where it leaves start node or arrives to end node
func (resolver *neighborResolver) wayHeading(way *Way, endpoint EndpointType) (float64, bool) {
	if endpoint == ENDPOINT_START {
		edge, ok := resolver.graph.Edge(way.startEdgeID)
		if !ok {
			return 0, false
		}
		return edge.HeadingAtStart()
	}
	edge, ok := resolver.graph.Edge(way.endEdgeID)
	if !ok {
		return 0, false
	}
	return edge.HeadingAtEnd()
}

// candidateDeviation compares heading of the way with heading of candidate at the shared node.
// Candidate entering start node is measured where it arrives, candidate leaving end node is measured where it departs
func candidateDeviation(candidate *Edge, wayHeading float64, endpoint EndpointType) (float64, bool) {
	var heading float64
	var ok bool
	if endpoint == ENDPOINT_START {
		heading, ok = candidate.HeadingAtEnd()
	} else {
		heading, ok = candidate.HeadingAtStart()
	}
	if !ok {
		return math.Inf(1), false
	}
	return headingDeviation(wayHeading, heading), true
}
