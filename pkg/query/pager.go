package query

// page describes one slice of a ranked result sequence.
type page struct {
	start          int
	end            int
	totalResults   int
	totalPages     int
	currentPage    int
	currentResults int
}

// clampMaxResults saturates a page size into [MinMaxResults, MaxMaxResults].
// Zero selects the default.
func clampMaxResults(maxResults int) int {
	switch {
	case maxResults == 0:
		return DefaultMaxResults
	case maxResults < MinMaxResults:
		return MinMaxResults
	case maxResults > MaxMaxResults:
		return MaxMaxResults
	default:
		return maxResults
	}
}

// paginate computes the slice bounds and counters for the requested page of
// a sequence of total results. maxResults must already be clamped and
// pageNum must be >= 1. A page past the end yields an empty slice rather
// than an error; total_pages never drops below 1 even for an empty sequence.
func paginate(total, pageNum, maxResults int) page {
	totalPages := (total + maxResults - 1) / maxResults
	if totalPages < 1 {
		totalPages = 1
	}

	// Settle the past-the-end case before any index arithmetic: pageNum is
	// caller-controlled and (pageNum-1)*maxResults can overflow int.
	if pageNum > totalPages {
		return page{
			start:        total,
			end:          total,
			totalResults: total,
			totalPages:   totalPages,
			currentPage:  pageNum,
		}
	}

	// pageNum <= totalPages <= max(total, 1), so these stay in range.
	start := (pageNum - 1) * maxResults
	end := start + maxResults
	if end > total {
		end = total
	}

	return page{
		start:          start,
		end:            end,
		totalResults:   total,
		totalPages:     totalPages,
		currentPage:    pageNum,
		currentResults: end - start,
	}
}
