package osmlinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linkScenario builds link way (way 100) from node 1 at (0; 0) to node 2 at (lonEnd; 0), split into two edges,
// with road of startClass entering node 1 and road of endClass leaving node 2
func linkScenario(t *testing.T, linkClass HighwayType, lonEnd float64, startClass, endClass HighwayType) (*graphFixture, []EdgeID) {
	f := newGraphFixture(t)
	f.node(1, 0, 0)
	f.node(3, lonEnd/2, 0)
	f.node(2, lonEnd, 0)
	link := f.way(100, linkClass, false, 1, 3, 2)
	if startClass != HIGHWAY_UNDEFINED {
		f.node(10, -0.01, 0)
		f.way(200, startClass, true, 10, 1)
	}
	if endClass != HIGHWAY_UNDEFINED {
		f.node(20, lonEnd+0.01, 0)
		f.way(300, endClass, true, 2, 20)
	}
	return f, link
}

func TestLinkEngineScenarios(t *testing.T) {
	// 0.0135 degree of longitude on equator is about 1503 meters, 0.0018 - about 200 meters, 0.018 - about 2004 meters
	cases := []struct {
		name       string
		linkClass  HighwayType
		lonEnd     float64
		startClass HighwayType
		endClass   HighwayType
		expected   VerdictType
		suggested  HighwayType
	}{
		{"too long only", HIGHWAY_PRIMARY_LINK, 0.0135, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY, VERDICT_TOO_LONG, HIGHWAY_UNDEFINED},
		{"wrong class", HIGHWAY_SECONDARY_LINK, 0.0018, HIGHWAY_MOTORWAY, HIGHWAY_MOTORWAY, VERDICT_WRONG_CLASS, HIGHWAY_MOTORWAY_LINK},
		{"no connection", HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_UNDEFINED, HIGHWAY_UNDEFINED, VERDICT_NO_CONNECTION_EITHER_END, HIGHWAY_UNDEFINED},
		{"no link equivalent", HIGHWAY_TERTIARY_LINK, 0.0018, HIGHWAY_RESIDENTIAL, HIGHWAY_RESIDENTIAL, VERDICT_NO_LINK_EQUIVALENT_EITHER_END, HIGHWAY_UNDEFINED},
		{"too long and wrong class", HIGHWAY_TERTIARY_LINK, 0.018, HIGHWAY_TRUNK, HIGHWAY_TERTIARY, VERDICT_TOO_LONG_AND_WRONG_CLASS, HIGHWAY_TRUNK_LINK},
		{"dominant at end", HIGHWAY_TERTIARY_LINK, 0.0018, HIGHWAY_TERTIARY, HIGHWAY_PRIMARY, VERDICT_WRONG_CLASS, HIGHWAY_PRIMARY_LINK},
		{"ok", HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_SECONDARY, VERDICT_OK, HIGHWAY_UNDEFINED},
		{"one end only", HIGHWAY_MOTORWAY_LINK, 0.0018, HIGHWAY_UNDEFINED, HIGHWAY_MOTORWAY, VERDICT_OK, HIGHWAY_UNDEFINED},
		{"link neighbor", HIGHWAY_SECONDARY_LINK, 0.0018, HIGHWAY_RESIDENTIAL, HIGHWAY_TRUNK_LINK, VERDICT_WRONG_CLASS, HIGHWAY_TRUNK_LINK},
		{"residential ignored for dominance", HIGHWAY_TERTIARY_LINK, 0.0018, HIGHWAY_RESIDENTIAL, HIGHWAY_TERTIARY, VERDICT_OK, HIGHWAY_UNDEFINED},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, link := linkScenario(t, c.linkClass, c.lonEnd, c.startClass, c.endClass)
			engine := NewLinkEngine(f.graph, DefaultRoadClassTable())
			verdict := engine.Evaluate(link[0])
			assert.Equal(t, c.expected, verdict.Type)
			assert.Equal(t, c.suggested, verdict.Suggested)
			assert.Equal(t, c.linkClass, verdict.Highway)
			switch c.expected {
			case VERDICT_TOO_LONG, VERDICT_TOO_LONG_AND_WRONG_CLASS:
				assert.Greater(t, verdict.LengthMeters, DEFAULT_MAXIMUM_LENGTH_METERS)
				assert.Equal(t, DEFAULT_MAXIMUM_LENGTH_METERS, verdict.LimitMeters)
			default:
				assert.Zero(t, verdict.LimitMeters)
			}
		})
	}
}

func TestLinkEngineIdempotence(t *testing.T) {
	f := newGraphFixture(t)
	f.node(1, 0, 0)
	f.node(2, 0.001, 0)
	f.node(3, 0.002, 0.0005)
	f.node(4, 0.003, 0.001)
	f.node(10, -0.01, 0)
	f.node(20, 0.013, 0.001)
	link := f.way(100, HIGHWAY_SECONDARY_LINK, true, 1, 2, 3, 4)
	f.way(200, HIGHWAY_TRUNK, true, 10, 1)
	f.way(300, HIGHWAY_PRIMARY, true, 4, 20)

	engine := NewLinkEngine(f.graph, DefaultRoadClassTable())
	expected := engine.Evaluate(link[0])
	assert.Equal(t, VERDICT_WRONG_CLASS, expected.Type)
	assert.Equal(t, HIGHWAY_TRUNK_LINK, expected.Suggested)
	for _, id := range link {
		for _, start := range []EdgeID{id, -id} {
			assert.Equal(t, expected, engine.Evaluate(start), "Evaluated from %d", start)
			assert.Equal(t, expected, engine.Evaluate(start), "Repeated evaluation from %d", start)
		}
	}
}

func TestLinkEngineLengthMonotonicity(t *testing.T) {
	f, link := linkScenario(t, HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY)
	engine := NewLinkEngine(f.graph, DefaultRoadClassTable())
	before := engine.Evaluate(link[0])
	require.Equal(t, VERDICT_OK, before.Type)
	f.setLength(link[1], 950)
	after := engine.Evaluate(link[0])
	assert.Equal(t, VERDICT_TOO_LONG, after.Type)

	f, link = linkScenario(t, HIGHWAY_SECONDARY_LINK, 0.0018, HIGHWAY_MOTORWAY, HIGHWAY_MOTORWAY)
	engine = NewLinkEngine(f.graph, DefaultRoadClassTable())
	before = engine.Evaluate(link[0])
	require.Equal(t, VERDICT_WRONG_CLASS, before.Type)
	previous := before
	for _, meters := range []float64{500, 900, 1500, 3000} {
		f.setLength(link[0], meters)
		current := engine.Evaluate(link[0])
		assert.Greater(t, current.LengthMeters, previous.LengthMeters)
		previous = current
	}
	assert.Equal(t, VERDICT_TOO_LONG_AND_WRONG_CLASS, previous.Type)
}

func TestLinkEngineMaximumLength(t *testing.T) {
	f, link := linkScenario(t, HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY)
	length := engineWayLength(t, f, link[0])

	strict := NewLinkEngine(f.graph, DefaultRoadClassTable(), WithMaximumLength(length))
	assert.Equal(t, VERDICT_OK, strict.Evaluate(link[0]).Type, "Length equal to maximum is fine")

	short := NewLinkEngine(f.graph, DefaultRoadClassTable(), WithMaximumLength(100))
	verdict := short.Evaluate(link[0])
	assert.Equal(t, VERDICT_TOO_LONG, verdict.Type)
	assert.Equal(t, 100.0, verdict.LimitMeters)
	assert.InDelta(t, length, verdict.LengthMeters, 1e-9)

	ignored := NewLinkEngine(f.graph, DefaultRoadClassTable(), WithMaximumLength(-5), WithForwardBand(500))
	assert.Equal(t, DEFAULT_MAXIMUM_LENGTH_METERS, ignored.MaximumLength())
	assert.Equal(t, DEFAULT_FORWARD_BAND_DEGREES, ignored.resolver.forwardBand)
}

func engineWayLength(t *testing.T, f *graphFixture, id EdgeID) float64 {
	way, err := AssembleWay(f.graph, id)
	require.NoError(t, err)
	return way.LengthMeters
}

func TestLinkEngineMalformedGraph(t *testing.T) {
	engine := NewLinkEngine(NewGraph(), DefaultRoadClassTable())
	assert.Equal(t, VERDICT_NO_CONNECTION_EITHER_END, engine.Evaluate(7).Type, "Unknown edge")

	// Boundary node is not registered in graph
	graph := NewGraph()
	graph.AddNode(1, [2]float64{0, 0})
	require.NoError(t, graph.AddEdge(&Edge{ID: 1, WayID: 100, SourceNodeID: 1, TargetNodeID: 2, Highway: HIGHWAY_PRIMARY_LINK, LengthMeters: 100, Representative: true}))
	graph.AddNode(3, [2]float64{-0.001, 0})
	require.NoError(t, graph.AddEdge(&Edge{ID: 2, WayID: 200, SourceNodeID: 3, TargetNodeID: 1, Highway: HIGHWAY_PRIMARY, LengthMeters: 100, Representative: true}))
	engine = NewLinkEngine(graph, DefaultRoadClassTable())
	assert.Equal(t, VERDICT_NO_CONNECTION_EITHER_END, engine.Evaluate(1).Type)

	// Zero length
	f, link := linkScenario(t, HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY)
	f.setLength(link[0], 0)
	f.setLength(link[1], 0)
	engine = NewLinkEngine(f.graph, DefaultRoadClassTable())
	assert.Equal(t, VERDICT_NO_CONNECTION_EITHER_END, engine.Evaluate(link[0]).Type)

	// Closed way
	f = newGraphFixture(t)
	f.node(1, 0, 0)
	f.node(2, 0.001, 0)
	f.node(3, 0.001, 0.001)
	f.node(4, -0.001, 0)
	loop := f.way(100, HIGHWAY_PRIMARY_LINK, false, 1, 2, 3, 1)
	f.way(200, HIGHWAY_PRIMARY, true, 4, 1)
	engine = NewLinkEngine(f.graph, DefaultRoadClassTable())
	assert.Equal(t, VERDICT_NO_CONNECTION_EITHER_END, engine.Evaluate(loop[0]).Type)
}

func TestLinkEngineFromConfiguration(t *testing.T) {
	f, link := linkScenario(t, HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_PRIMARY)
	cfg := DefaultConfiguration()
	cfg.Length.Maximum.Meters = 150
	engine, err := NewLinkEngineFromConfiguration(f.graph, cfg)
	require.NoError(t, err)
	assert.Equal(t, 150.0, engine.MaximumLength())
	assert.Equal(t, VERDICT_TOO_LONG, engine.Evaluate(link[0]).Type)

	// Priority order override: secondary becomes more important than primary
	cfg = DefaultConfiguration()
	cfg.HighwayTypes.PriorityOrder = []string{"motorway", "trunk", "secondary", "primary", "tertiary"}
	f, link = linkScenario(t, HIGHWAY_PRIMARY_LINK, 0.0018, HIGHWAY_PRIMARY, HIGHWAY_SECONDARY)
	engine, err = NewLinkEngineFromConfiguration(f.graph, cfg)
	require.NoError(t, err)
	verdict := engine.Evaluate(link[0])
	assert.Equal(t, VERDICT_WRONG_CLASS, verdict.Type)
	assert.Equal(t, HIGHWAY_SECONDARY_LINK, verdict.Suggested)

	cfg.HighwayTypes.PriorityOrder = []string{"motorway", "unknown_class"}
	_, err = NewLinkEngineFromConfiguration(f.graph, cfg)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestVerdictPredicates(t *testing.T) {
	assert.False(t, okVerdict().Flagged())
	assert.False(t, okVerdict().Unresolved())
	assert.True(t, tooLongVerdict(2, 1).Flagged())
	assert.True(t, wrongClassVerdict(HIGHWAY_TRUNK_LINK).Flagged())
	assert.True(t, tooLongAndWrongClassVerdict(2, 1, HIGHWAY_TRUNK_LINK).Flagged())
	assert.True(t, noConnectionVerdict().Unresolved())
	assert.False(t, noConnectionVerdict().Flagged())
	assert.True(t, noLinkEquivalentVerdict().Unresolved())
	assert.Equal(t, "too_long_and_wrong_class", VERDICT_TOO_LONG_AND_WRONG_CLASS.String())
}
