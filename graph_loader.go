package osmlinks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type osmScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

var (
	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}
	onewayReversible = map[string]struct{}{
		"reversible":  {},
		"alternating": {},
	}
)

// GraphLoader builds road graph from OSM file
type GraphLoader struct {
	highways map[HighwayType]struct{}
	logger   logr.Logger
	procs    int
}

// wayData Highway which passed filtering
type wayData struct {
	ID         osm.WayID
	Highway    HighwayType
	Oneway     bool
	IsReversed bool
	Nodes      []osm.NodeID
	Tags       osm.Tags
}

// WithHighwayFilter restricts graph to given classes. All known classes are loaded by default
func WithHighwayFilter(types ...HighwayType) func(*GraphLoader) {
	return func(loader *GraphLoader) {
		loader.highways = highwaySet(types)
	}
}

func WithLoaderLogger(logger logr.Logger) func(*GraphLoader) {
	return func(loader *GraphLoader) {
		loader.logger = logger
	}
}

// LoadGraph reads highways from *.osm / *.xml / *.pbf file.
//
// Ways are split into edges at nodes which are shared between ways (or used twice by the same way).
// One way segments become single representative edges, others get reverse twins
func LoadGraph(filename string, options ...func(*GraphLoader)) (*Graph, error) {
	loader := &GraphLoader{
		logger: logr.Discard(),
		procs:  4,
	}
	for _, option := range options {
		option(loader)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".osm", ".xml", ".pbf":
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
	loader.logger.V(1).Info("Opening file", "file", filename)
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()
	return loader.load(context.Background(), file, ext)
}

func (loader *GraphLoader) newScanner(ctx context.Context, reader io.Reader, ext string) osmScanner {
	if ext == ".pbf" {
		return osmpbf.New(ctx, reader, loader.procs)
	}
	return osmxml.New(ctx, reader)
}

func (loader *GraphLoader) load(ctx context.Context, file io.ReadSeeker, ext string) (*Graph, error) {
	/* Process ways */
	st := time.Now()
	ways := []*wayData{}
	nodesSeen := make(map[osm.NodeID]struct{})
	{
		scannerWays := loader.newScanner(ctx, file, ext)
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			prepared, ok := loader.prepareWay(way)
			if !ok {
				continue
			}
			for _, nodeID := range prepared.Nodes {
				nodesSeen[nodeID] = struct{}{}
			}
			ways = append(ways, prepared)
		}
		err := scannerWays.Err()
		scannerWays.Close()
		if err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	loader.logger.V(1).Info("Ways processed", "ways", len(ways), "elapsed", time.Since(st).String())

	// Seek file to start
	_, err := file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	st = time.Now()
	nodes := make(map[osm.NodeID]orb.Point, len(nodesSeen))
	{
		scannerNodes := loader.newScanner(ctx, file, ext)
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; ok {
				delete(nodesSeen, node.ID)
				nodes[node.ID] = node.Point()
			}
		}
		err := scannerNodes.Err()
		scannerNodes.Close()
		if err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	if len(nodesSeen) > 0 {
		loader.logger.Info("Some of way nodes are missing in file, ways will be cut at them", "missing", len(nodesSeen))
	}
	loader.logger.V(1).Info("Nodes processed", "nodes", len(nodes), "elapsed", time.Since(st).String())

	st = time.Now()
	graph, err := buildGraph(ways, nodes)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build graph")
	}
	loader.logger.V(1).Info("Graph prepared", "edges", graph.NumEdges(), "nodes", graph.NumNodes(), "elapsed", time.Since(st).String())
	return graph, nil
}

// prepareWay filters way by highway class and resolves its direction
func (loader *GraphLoader) prepareWay(way *osm.Way) (*wayData, bool) {
	highway, ok := ParseHighwayType(way.Tags.Find("highway"))
	if !ok {
		return nil, false
	}
	if loader.highways != nil {
		if _, ok := loader.highways[highway]; !ok {
			return nil, false
		}
	}
	if len(way.Nodes) < 2 {
		return nil, false
	}
	oneway := false
	isReversed := false
	onewayText := way.Tags.Find("oneway")
	if onewayText != "" {
		if onewayText == "yes" || onewayText == "1" || onewayText == "true" {
			oneway = true
		} else if onewayText == "no" || onewayText == "0" || onewayText == "false" {
			oneway = false
		} else if onewayText == "-1" {
			oneway = true
			isReversed = true
		} else if _, found := onewayReversible[onewayText]; !found {
			loader.logger.V(1).Info("Unhandled `oneway` tag value, way is treated as two way", "value", onewayText, "way", way.ID)
		}
	} else {
		junctionText := way.Tags.Find("junction")
		if _, ok := junctionTypes[junctionText]; ok {
			oneway = true
		}
	}
	prepared := &wayData{
		ID:         way.ID,
		Highway:    highway,
		Oneway:     oneway,
		IsReversed: isReversed,
		Nodes:      make([]osm.NodeID, 0, len(way.Nodes)),
		Tags:       make(osm.Tags, len(way.Tags)),
	}
	copy(prepared.Tags, way.Tags)
	for _, node := range way.Nodes {
		prepared.Nodes = append(prepared.Nodes, node.ID)
	}
	return prepared, true
}

// buildGraph splits ways at shared nodes. Edge identifiers are assigned sequentially starting from 1
func buildGraph(ways []*wayData, nodes map[osm.NodeID]orb.Point) (*Graph, error) {
	useCount := make(map[osm.NodeID]int, len(nodes))
	for _, way := range ways {
		for i, nodeID := range way.Nodes {
			if _, ok := nodes[nodeID]; !ok {
				continue
			}
			if i == 0 || i == len(way.Nodes)-1 {
				useCount[nodeID] += 2
			} else {
				useCount[nodeID]++
			}
		}
	}

	graph := NewGraph()
	nextID := EdgeID(1)
	for _, way := range ways {
		var source osm.NodeID
		var geometry orb.LineString
		for _, nodeID := range way.Nodes {
			pt, ok := nodes[nodeID]
			if !ok {
				// Cut the way at missing node
				geometry = nil
				continue
			}
			if geometry == nil {
				source = nodeID
				geometry = orb.LineString{pt}
				continue
			}
			geometry = append(geometry, pt)
			if useCount[nodeID] < 2 {
				continue
			}
			edge := newWayEdge(nextID, way, source, nodeID, geometry)
			graph.AddNode(edge.SourceNodeID, edge.Geom[0])
			graph.AddNode(edge.TargetNodeID, edge.Geom[len(edge.Geom)-1])
			var err error
			if way.Oneway {
				edge.Representative = true
				err = graph.AddEdge(edge)
			} else {
				err = graph.AddTwoWayEdge(edge)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "Can't add edge for way %d", way.ID)
			}
			nextID++
			source = nodeID
			geometry = orb.LineString{pt}
		}
	}
	return graph, nil
}

func newWayEdge(id EdgeID, way *wayData, source, target osm.NodeID, geometry orb.LineString) *Edge {
	geom := geometry.Clone()
	if way.IsReversed {
		geom.Reverse()
		source, target = target, source
	}
	return &Edge{
		ID:           id,
		WayID:        way.ID,
		SourceNodeID: NodeID(source),
		TargetNodeID: NodeID(target),
		Highway:      way.Highway,
		LengthMeters: geo.LengthHaversine(geom),
		Geom:         geom,
		Tags:         way.Tags,
	}
}
