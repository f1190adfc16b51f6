package osmlinks

import (
	"github.com/paulmach/orb"
)

// NodeID Identifier of crossing. Loader uses OSM node identifiers as is
type NodeID int64

// Node is a crossing of edges
type Node struct {
	ID             NodeID
	Geom           orb.Point
	incomingEdges  []EdgeID
	outcomingEdges []EdgeID
}

// DirectionType Direction of edges relative to node
type DirectionType uint16

const (
	DIRECTION_INCOMING = DirectionType(iota + 1)
	DIRECTION_OUTCOMING
	DIRECTION_BOTH
)

func (iotaIdx DirectionType) String() string {
	return [...]string{"incoming", "outcoming", "both"}[iotaIdx-1]
}
