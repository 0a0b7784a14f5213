package planner

// DefaultPerPage is the page size used when the caller does not specify one.
const DefaultPerPage = 10

// Page is one page of a listing. An empty result is page 1 of 0 total pages,
// never a nil item slice.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// paginate slices a fully materialized list into one page.
func paginate[T any](items []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start >= total {
		return Page[T]{Items: []T{}, Page: page, TotalPages: totalPages}
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return Page[T]{Items: items[start:end], Page: page, TotalPages: totalPages}
}

// pageOf wraps a store-paginated slice (already limited to one page) with
// the page arithmetic derived from the store's total count.
func pageOf[T any](items []T, page, perPage, total int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: (total + perPage - 1) / perPage,
	}
}

// pageBounds converts 1-based page arithmetic to a store offset and limit.
func pageBounds(page, perPage int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return (page - 1) * perPage, perPage
}
