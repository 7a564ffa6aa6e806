package aggregate

import "github.com/medeinalab/stock-query-service/internal/models"

// Paginate slices an already-ordered item list. cursor and limit are assumed
// clamped by the caller; the cursor is caller-supplied, nothing is retained
// between calls.
func Paginate[T any](items []T, cursor, limit int) ([]T, models.Page) {
	total := len(items)

	start := cursor
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := models.Page{
		Cursor: cursor,
		Limit:  limit,
		Total:  total,
	}
	if cursor+limit < total {
		next := cursor + limit
		page.NextCursor = &next
	}

	return items[start:end], page
}
