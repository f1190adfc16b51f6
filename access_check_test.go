package osmlinks

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCheck(t *testing.T) {
	f := newGraphFixture(t)
	f.node(1, 0, 0)
	f.node(2, 0.001, 0)
	f.node(3, 0.002, 0)
	footway := f.way(100, HIGHWAY_FOOTWAY, true, 1, 2, 3)
	trunk := f.way(200, HIGHWAY_TRUNK, false, 3, 1)
	primary := f.way(300, HIGHWAY_PRIMARY, false, 1, 3)
	for _, id := range []EdgeID{footway[0], footway[1]} {
		edge, _ := f.graph.Edge(id)
		edge.Tags = osm.Tags{{Key: "highway", Value: "footway"}, {Key: "access", Value: "Permissive"}}
	}
	trunkEdge, _ := f.graph.Edge(trunk[0])
	trunkEdge.Tags = osm.Tags{{Key: "highway", Value: "trunk"}, {Key: "access", Value: "no"}}
	primaryEdge, _ := f.graph.Edge(primary[0])
	primaryEdge.Tags = osm.Tags{{Key: "highway", Value: "primary"}, {Key: "access", Value: "yes"}}

	check, err := NewAccessCheck(f.graph, DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, ACCESS_CHECK_NAME, check.Name())

	footwayEdge, _ := f.graph.Edge(footway[0])
	twin, _ := f.graph.Edge(-footway[0])
	assert.True(t, check.Candidate(footwayEdge))
	assert.False(t, check.Candidate(twin), "Reverse twins are skipped")
	assert.True(t, check.Candidate(trunkEdge))
	assert.False(t, check.Candidate(primaryEdge), "Primary roads are out of scope")

	way, verdict := check.Evaluate(footway[1])
	assert.Equal(t, VERDICT_ACCESS_ON_FOOTWAY, verdict.Type)
	assert.Equal(t, "permissive", verdict.Access)
	assert.Equal(t, HIGHWAY_FOOTWAY, verdict.Highway)
	assert.Equal(t, footway, way.Edges)
	assert.True(t, verdict.Flagged())
	assert.Equal(t, "Tag access=permissive on highway=footway grants access for everyone including car, horse, moped, hazmat and so on, unless explicitly excluded.", check.Instruction(verdict))

	_, verdict = check.Evaluate(trunk[0])
	assert.Equal(t, VERDICT_OK, verdict.Type)
	_, verdict = check.Evaluate(12345)
	assert.Equal(t, VERDICT_OK, verdict.Type)
}

func TestAccessCheckConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Access.FlagValues = []string{"designated"}
	cfg.Access.MotorwayTypes = []string{"motorway"}
	cfg.Access.FootwayTypes = []string{}

	f := newGraphFixture(t)
	f.node(1, 0, 0)
	f.node(2, 0.001, 0)
	ids := f.way(100, HIGHWAY_MOTORWAY, false, 1, 2)
	edge, _ := f.graph.Edge(ids[0])
	edge.Tags = osm.Tags{{Key: "access", Value: "designated"}}

	check, err := NewAccessCheck(f.graph, cfg)
	require.NoError(t, err)
	_, verdict := check.Evaluate(ids[0])
	assert.Equal(t, VERDICT_ACCESS_ON_MOTORWAY, verdict.Type)
	assert.Contains(t, check.Instruction(verdict), "ski, horse, moped, hazmat")
}
