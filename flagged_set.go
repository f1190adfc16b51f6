package osmlinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/osm"
)

// FlaggedKey identifies logical way within single check
type FlaggedKey struct {
	CheckName string
	WayID     osm.WayID
}

func (key FlaggedKey) String() string {
	return fmt.Sprintf("%s/%d", key.CheckName, key.WayID)
}

// FlaggedSet is registry of ways which have been taken for evaluation already.
//
// MarkIfAbsent must be atomic: for concurrent calls with the same key exactly one caller gets true.
// Unmark releases the claim when the way could not be reported, so the next run evaluates it again
type FlaggedSet interface {
	MarkIfAbsent(ctx context.Context, key FlaggedKey) (bool, error)
	Unmark(ctx context.Context, key FlaggedKey) error
	Contains(ctx context.Context, key FlaggedKey) (bool, error)
}

// MemoryFlaggedSet keeps keys in process memory
type MemoryFlaggedSet struct {
	keys sync.Map
}

func NewMemoryFlaggedSet() *MemoryFlaggedSet {
	return &MemoryFlaggedSet{}
}

func (set *MemoryFlaggedSet) MarkIfAbsent(ctx context.Context, key FlaggedKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, loaded := set.keys.LoadOrStore(key, struct{}{})
	return !loaded, nil
}

func (set *MemoryFlaggedSet) Unmark(ctx context.Context, key FlaggedKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	set.keys.Delete(key)
	return nil
}

func (set *MemoryFlaggedSet) Contains(ctx context.Context, key FlaggedKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := set.keys.Load(key)
	return ok, nil
}

// Len returns number of marked keys
func (set *MemoryFlaggedSet) Len() int {
	n := 0
	set.keys.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
