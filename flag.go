package osmlinks

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const (
	// Precision 8 gives cell about 38m x 19m
	flagGeohashPrecision = 8
)

// Flag is a reported issue: one way, one check, one verdict
type Flag struct {
	RunID       uuid.UUID
	CheckName   string
	WayID       osm.WayID
	Edges       []EdgeID
	Verdict     Verdict
	Instruction string
	Geom        orb.MultiLineString
	Centroid    orb.Point
	Geohash     string
}

// NewFlag prepares flag for the way. Geometry covers every edge of the way
func NewFlag(runID uuid.UUID, check Check, way *Way, verdict Verdict, graph RoadGraph) *Flag {
	geom := way.Geometry(graph)
	points := make([]orb.Point, 0, 2*len(geom))
	for _, line := range geom {
		points = append(points, line...)
	}
	centroid := findCentroid(points)
	edges := make([]EdgeID, len(way.Edges))
	copy(edges, way.Edges)
	flag := &Flag{
		RunID:       runID,
		CheckName:   check.Name(),
		WayID:       way.ID,
		Edges:       edges,
		Verdict:     verdict,
		Instruction: check.Instruction(verdict),
		Geom:        geom,
		Centroid:    centroid,
	}
	if len(points) > 0 {
		flag.Geohash = geohash.EncodeWithPrecision(centroid.Lat(), centroid.Lon(), flagGeohashPrecision)
	}
	return flag
}

// linkInstruction renders message for link check verdicts
func linkInstruction(verdict Verdict) string {
	switch verdict.Type {
	case VERDICT_TOO_LONG:
		return fmt.Sprintf("Invalid link, distance, %.2f m, greater than maximum, %.2f m.", verdict.LengthMeters, verdict.LimitMeters)
	case VERDICT_WRONG_CLASS:
		return fmt.Sprintf("Link is tagged as '%s', but connected roads require '%s'.", verdict.Highway, verdict.Suggested)
	case VERDICT_TOO_LONG_AND_WRONG_CLASS:
		return fmt.Sprintf("Invalid link, distance, %.2f m, greater than maximum, %.2f m. Link is tagged as '%s', but connected roads require '%s'.", verdict.LengthMeters, verdict.LimitMeters, verdict.Highway, verdict.Suggested)
	case VERDICT_NO_CONNECTION_EITHER_END:
		return "Link is not connected to any road at either end."
	case VERDICT_NO_LINK_EQUIVALENT_EITHER_END:
		return "None of the connected roads has a link equivalent."
	default:
		return ""
	}
}

// accessInstruction renders message for access check verdicts
func accessInstruction(verdict Verdict) string {
	switch verdict.Type {
	case VERDICT_ACCESS_ON_MOTORWAY:
		return fmt.Sprintf("Tag access=%s on highway=%s grants access for everyone including ski, horse, moped, hazmat and so on, unless explicitly excluded.", verdict.Access, verdict.Highway)
	case VERDICT_ACCESS_ON_FOOTWAY:
		return fmt.Sprintf("Tag access=%s on highway=%s grants access for everyone including car, horse, moped, hazmat and so on, unless explicitly excluded.", verdict.Access, verdict.Highway)
	default:
		return ""
	}
}
