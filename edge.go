package osmlinks

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
)

// EdgeID Identifier of an edge. Reverse twin of two-way segment has negated identifier of its representative edge
type EdgeID int64

// Representative returns identifier of representative edge for given identifier
func (id EdgeID) Representative() EdgeID {
	if id < 0 {
		return -id
	}
	return id
}

// Edge is one directed segment of OSM way between two crossings
type Edge struct {
	ID           EdgeID
	WayID        osm.WayID
	SourceNodeID NodeID
	TargetNodeID NodeID
	Highway      HighwayType
	LengthMeters float64
	Geom         orb.LineString
	Tags         osm.Tags
	// False for reverse twin of two-way segment
	Representative bool
}

// HeadingAtStart returns bearing (degrees) of the first non-degenerate segment of the edge
func (edge *Edge) HeadingAtStart() (float64, bool) {
	for i := 1; i < len(edge.Geom); i++ {
		if !edge.Geom[0].Equal(edge.Geom[i]) {
			return geo.Bearing(edge.Geom[0], edge.Geom[i]), true
		}
	}
	return 0, false
}

// HeadingAtEnd returns bearing (degrees) of the last non-degenerate segment of the edge
func (edge *Edge) HeadingAtEnd() (float64, bool) {
	last := len(edge.Geom) - 1
	for i := last - 1; i >= 0; i-- {
		if !edge.Geom[i].Equal(edge.Geom[last]) {
			return geo.Bearing(edge.Geom[i], edge.Geom[last]), true
		}
	}
	return 0, false
}

// reversed returns reverse twin for the edge
func (edge *Edge) reversed() *Edge {
	geom := edge.Geom.Clone()
	geom.Reverse()
	return &Edge{
		ID:             -edge.ID,
		WayID:          edge.WayID,
		SourceNodeID:   edge.TargetNodeID,
		TargetNodeID:   edge.SourceNodeID,
		Highway:        edge.Highway,
		LengthMeters:   edge.LengthMeters,
		Geom:           geom,
		Tags:           edge.Tags,
		Representative: false,
	}
}
