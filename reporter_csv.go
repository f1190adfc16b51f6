package osmlinks

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

var csvReporterHeader = []string{"run_id", "check", "osm_way_id", "edges", "verdict", "highway", "suggested", "access", "length_meters", "limit_meters", "geohash", "instruction", "geom"}

// CSVReporter writes flags as rows of ';'-separated file
type CSVReporter struct {
	sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVReporter creates file and writes header
func NewCSVReporter(fname string) (*CSVReporter, error) {
	file, err := os.Create(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create file")
	}
	writer := csv.NewWriter(file)
	writer.Comma = ';'
	err = writer.Write(csvReporterHeader)
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "Can't write header")
	}
	return &CSVReporter{file: file, writer: writer}, nil
}

func (reporter *CSVReporter) Report(ctx context.Context, flag *Flag) error {
	edges := make([]string, len(flag.Edges))
	for i, id := range flag.Edges {
		edges[i] = fmt.Sprintf("%d", id)
	}
	suggested := ""
	if flag.Verdict.Suggested != HIGHWAY_UNDEFINED {
		suggested = flag.Verdict.Suggested.String()
	}
	reporter.Lock()
	defer reporter.Unlock()
	err := reporter.writer.Write([]string{
		flag.RunID.String(),
		flag.CheckName,
		fmt.Sprintf("%d", flag.WayID),
		strings.Join(edges, ","),
		flag.Verdict.Type.String(),
		flag.Verdict.Highway.String(),
		suggested,
		flag.Verdict.Access,
		fmt.Sprintf("%f", flag.Verdict.LengthMeters),
		fmt.Sprintf("%f", flag.Verdict.LimitMeters),
		flag.Geohash,
		flag.Instruction,
		wkt.MarshalString(flag.Geom),
	})
	if err != nil {
		return errors.Wrap(err, "Can't write flag")
	}
	return nil
}

func (reporter *CSVReporter) Close() error {
	reporter.Lock()
	defer reporter.Unlock()
	reporter.writer.Flush()
	if err := reporter.writer.Error(); err != nil {
		reporter.file.Close()
		return errors.Wrap(err, "Can't flush flags")
	}
	return reporter.file.Close()
}
