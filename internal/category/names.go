package category

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentLookups = 8

// ResolveNames looks up each distinct id once. Failed lookups map to a
// placeholder, so the result always has an entry for every id.
func ResolveNames(ctx context.Context, dir Directory, ids []int64) map[int64]string {
	names := make(map[int64]string, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		id := id
		g.Go(func() error {
			name := NameOrPlaceholder(gctx, dir, id)
			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return names
}
