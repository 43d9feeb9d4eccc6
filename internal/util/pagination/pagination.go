package pagination

import (
	"context"
	"fmt"
)

// Lister fetches one page starting at cursor and returns the cursor of the next
// page. An empty next cursor marks the last page.
type Lister[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// All follows cursors until the last page and returns every item.
func All[T any](ctx context.Context, lister Lister[T]) ([]T, error) {
	var all []T
	cursor := ""
	seen := map[string]bool{}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, next, err := lister(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("pagination failed on page %d: %w", page, err)
		}
		all = append(all, items...)

		if next == "" {
			return all, nil
		}
		if seen[next] {
			return nil, fmt.Errorf("pagination cursor %q repeated on page %d", next, page)
		}
		seen[next] = true
		cursor = next
	}
}

// ProcessInBatches calls processor with consecutive slices of at most batchSize
// items and stops at the first error.
func ProcessInBatches[T any](items []T, batchSize int, processor func(batch []T) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		if err := processor(items[i:end]); err != nil {
			return fmt.Errorf("batch starting at index %d failed: %w", i, err)
		}
	}
	return nil
}
