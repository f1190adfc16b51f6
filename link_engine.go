package osmlinks

import (
	"github.com/go-logr/logr"
)

// LinkEngine decides whether link way has proper class and length.
//
// Engine never mutates the graph, so Evaluate could be called from any number of goroutines
type LinkEngine struct {
	graph         RoadGraph
	table         *RoadClassTable
	maximumLength float64
	resolver      neighborResolver
	logger        logr.Logger
}

// NewLinkEngine creates engine for given graph and road classes table
func NewLinkEngine(graph RoadGraph, table *RoadClassTable, options ...func(*LinkEngine)) *LinkEngine {
	engine := &LinkEngine{
		graph:         graph,
		table:         table,
		maximumLength: DEFAULT_MAXIMUM_LENGTH_METERS,
		resolver: neighborResolver{
			graph:       graph,
			table:       table,
			forwardBand: DEFAULT_FORWARD_BAND_DEGREES,
		},
		logger: logr.Discard(),
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// NewLinkEngineFromConfiguration creates engine with table, maximum length and forward band taken from configuration
func NewLinkEngineFromConfiguration(graph RoadGraph, cfg *Configuration, options ...func(*LinkEngine)) (*LinkEngine, error) {
	table, err := cfg.BuildTable()
	if err != nil {
		return nil, err
	}
	opts := make([]func(*LinkEngine), 0, len(options)+2)
	opts = append(opts, WithMaximumLength(cfg.Length.Maximum.Meters), WithForwardBand(cfg.Neighbor.ForwardBandDegrees))
	opts = append(opts, options...)
	return NewLinkEngine(graph, table, opts...), nil
}

// WithMaximumLength sets maximum allowed length of link way (meters). Non-positive values are ignored
func WithMaximumLength(meters float64) func(*LinkEngine) {
	return func(engine *LinkEngine) {
		if meters > 0 {
			engine.maximumLength = meters
		}
	}
}

// WithForwardBand sets maximum heading deviation (degrees) for neighbor to be considered as continuation of the way
func WithForwardBand(degrees float64) func(*LinkEngine) {
	return func(engine *LinkEngine) {
		if degrees > 0 && degrees <= 180 {
			engine.resolver.forwardBand = degrees
		}
	}
}

func WithLogger(logger logr.Logger) func(*LinkEngine) {
	return func(engine *LinkEngine) {
		engine.logger = logger
	}
}

// Table returns road classes table used by engine
func (engine *LinkEngine) Table() *RoadClassTable {
	return engine.table
}

// MaximumLength returns length threshold (meters)
func (engine *LinkEngine) MaximumLength() float64 {
	return engine.maximumLength
}

// Evaluate returns verdict for the way containing given edge
func (engine *LinkEngine) Evaluate(id EdgeID) Verdict {
	_, verdict := engine.EvaluateWay(id)
	return verdict
}

// EvaluateWay assembles the way containing given edge and returns it along with verdict.
//
// Malformed graph data never produces an error: unknown edge, missing boundary node,
// closed or zero-length way are reported as no connection
func (engine *LinkEngine) EvaluateWay(id EdgeID) (Way, Verdict) {
	way, verdict := engine.evaluateWay(id)
	verdict.Highway = way.Highway
	return way, verdict
}

func (engine *LinkEngine) evaluateWay(id EdgeID) (Way, Verdict) {
	way, err := AssembleWay(engine.graph, id)
	if err != nil {
		engine.logger.V(2).Info("Can't assemble way", "edge", id, "error", err.Error())
		return way, noConnectionVerdict()
	}
	if !way.HasBoundary() || way.LengthMeters <= 0 {
		engine.logger.V(2).Info("Way has no boundary or zero length", "way", way.ID, "length", way.LengthMeters)
		return way, noConnectionVerdict()
	}
	for _, nodeID := range [2]NodeID{way.StartNodeID, way.EndNodeID} {
		if _, ok := engine.graph.Node(nodeID); !ok {
			engine.logger.V(2).Info("Boundary node is missing", "way", way.ID, "node", nodeID)
			return way, noConnectionVerdict()
		}
	}

	startClass, startFound := engine.resolver.resolveEndpoint(&way, ENDPOINT_START)
	endClass, endFound := engine.resolver.resolveEndpoint(&way, ENDPOINT_END)
	verdict := engine.decide(way.Highway, way.LengthMeters, startClass, startFound, endClass, endFound)
	engine.logger.V(2).Info("Way evaluated",
		"way", way.ID,
		"highway", way.Highway.String(),
		"start", neighborString(startClass, startFound),
		"end", neighborString(endClass, endFound),
		"length", way.LengthMeters,
		"verdict", verdict.Type.String(),
	)
	return way, verdict
}

// decide applies classification and length rules to resolved neighbors
func (engine *LinkEngine) decide(wayClass HighwayType, length float64, startClass HighwayType, startFound bool, endClass HighwayType, endFound bool) Verdict {
	if !startFound && !endFound {
		return noConnectionVerdict()
	}
	startEligible := startFound && engine.table.HasLinkEquivalent(startClass)
	endEligible := endFound && engine.table.HasLinkEquivalent(endClass)
	if !startEligible && !endEligible {
		return noLinkEquivalentVerdict()
	}

	dominant := startClass
	if !startEligible || (endEligible && engine.table.MoreImportant(endClass, startClass)) {
		dominant = endClass
	}
	// Dominant class has link equivalent at this point
	expected, _ := engine.table.expectedLink(dominant)
	wrongClass := wayClass != expected
	tooLong := length > engine.maximumLength

	switch {
	case tooLong && wrongClass:
		return tooLongAndWrongClassVerdict(length, engine.maximumLength, expected)
	case tooLong:
		return tooLongVerdict(length, engine.maximumLength)
	case wrongClass:
		return wrongClassVerdict(expected)
	default:
		return okVerdict()
	}
}

func neighborString(class HighwayType, found bool) string {
	if !found {
		return "none"
	}
	return class.String()
}
