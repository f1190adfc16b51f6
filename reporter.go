package osmlinks

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Reporter consumes flags produced by checks. Implementations must be safe for concurrent use
type Reporter interface {
	Report(ctx context.Context, flag *Flag) error
	Close() error
}

// MultiReporter passes every flag to each of reporters
type MultiReporter struct {
	reporters []Reporter
}

func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

func (multi *MultiReporter) Report(ctx context.Context, flag *Flag) error {
	for _, reporter := range multi.reporters {
		if err := reporter.Report(ctx, flag); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every reporter and returns the first error
func (multi *MultiReporter) Close() error {
	var first error
	for _, reporter := range multi.reporters {
		if err := reporter.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "Can't close reporter")
		}
	}
	return first
}

// MemoryReporter collects flags in memory
type MemoryReporter struct {
	sync.Mutex
	flags []*Flag
}

func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (memory *MemoryReporter) Report(ctx context.Context, flag *Flag) error {
	memory.Lock()
	memory.flags = append(memory.flags, flag)
	memory.Unlock()
	return nil
}

func (memory *MemoryReporter) Close() error {
	return nil
}

// Flags returns collected flags ordered by check name and way identifier
func (memory *MemoryReporter) Flags() []*Flag {
	memory.Lock()
	defer memory.Unlock()
	result := make([]*Flag, len(memory.flags))
	copy(result, memory.flags)
	sortFlags(result)
	return result
}

func sortFlags(flags []*Flag) {
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].CheckName != flags[j].CheckName {
			return flags[i].CheckName < flags[j].CheckName
		}
		return flags[i].WayID < flags[j].WayID
	})
}
