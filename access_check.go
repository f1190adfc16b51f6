package osmlinks

import (
	"strings"

	"github.com/go-logr/logr"
)

const (
	ACCESS_CHECK_NAME = "HighwayAccessCheck"
)

// AccessCheck flags ways where `access` tag grants access which is implied already or is misleading for the class of road
type AccessCheck struct {
	graph     RoadGraph
	values    map[string]struct{}
	motorways map[HighwayType]struct{}
	footways  map[HighwayType]struct{}
	logger    logr.Logger
}

// NewAccessCheck creates check from `access` section of configuration
func NewAccessCheck(graph RoadGraph, cfg *Configuration, options ...func(*AccessCheck)) (*AccessCheck, error) {
	values, motorways, footways, err := cfg.accessSets()
	if err != nil {
		return nil, err
	}
	check := &AccessCheck{
		graph:     graph,
		values:    values,
		motorways: motorways,
		footways:  footways,
		logger:    logr.Discard(),
	}
	for _, option := range options {
		option(check)
	}
	return check, nil
}

func WithAccessLogger(logger logr.Logger) func(*AccessCheck) {
	return func(check *AccessCheck) {
		check.logger = logger
	}
}

func (check *AccessCheck) Name() string {
	return ACCESS_CHECK_NAME
}

// Candidate accepts representative edges of motorway-like and footway-like classes
func (check *AccessCheck) Candidate(edge *Edge) bool {
	if !edge.Representative {
		return false
	}
	_, motorway := check.motorways[edge.Highway]
	_, footway := check.footways[edge.Highway]
	return motorway || footway
}

// Evaluate checks `access` tag of the edge. Flag (if any) covers the whole way
func (check *AccessCheck) Evaluate(id EdgeID) (Way, Verdict) {
	edge, ok := check.graph.Edge(id)
	if !ok {
		return Way{}, okVerdict()
	}
	access := strings.ToLower(strings.TrimSpace(edge.Tags.Find("access")))
	if _, flag := check.values[access]; !flag {
		return Way{ID: edge.WayID, Highway: edge.Highway, Edges: []EdgeID{edge.ID.Representative()}, LengthMeters: edge.LengthMeters}, okVerdict()
	}
	way, err := AssembleWay(check.graph, id)
	if err != nil {
		check.logger.V(2).Info("Can't assemble way", "edge", id, "error", err.Error())
		return way, okVerdict()
	}
	verdict := Verdict{Access: access, Highway: edge.Highway, LengthMeters: way.LengthMeters}
	if _, ok := check.motorways[edge.Highway]; ok {
		verdict.Type = VERDICT_ACCESS_ON_MOTORWAY
		return way, verdict
	}
	if _, ok := check.footways[edge.Highway]; ok {
		verdict.Type = VERDICT_ACCESS_ON_FOOTWAY
		return way, verdict
	}
	return way, okVerdict()
}

func (check *AccessCheck) Instruction(verdict Verdict) string {
	return accessInstruction(verdict)
}
