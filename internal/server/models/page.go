package models

// Page is one page of a larger result. Pages are numbered from 1.
type Page[T any] struct {
	Items        []T  `json:"items"`
	Total        int  `json:"total"`
	Pages        int  `json:"pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

// Paginate cuts page number page of size size out of all. Pages past the end
// are empty but still report totals. page and size below 1 are treated as 1.
func Paginate[T any](all []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}

	total := len(all)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	p := Page[T]{
		Items: []T{},
		Total: total,
		Pages: pages,
	}

	// page is bounded by pages before multiplying, so start stays below total.
	if page <= pages {
		start := (page - 1) * size
		end := start + min(size, total-start)
		p.Items = append(p.Items, all[start:end]...)
	}

	if page > 1 {
		prev := page - 1
		p.HasPrevious = true
		p.PreviousPage = &prev
	}
	if page < p.Pages {
		next := page + 1
		p.HasNext = true
		p.NextPage = &next
	}
	return p
}

// MapPage converts the items of p with fn, keeping the paging metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return WithItems(p, items)
}

// WithItems returns p's paging metadata around a replacement item slice.
func WithItems[T, U any](p Page[T], items []U) Page[U] {
	return Page[U]{
		Items:        items,
		Total:        p.Total,
		Pages:        p.Pages,
		HasNext:      p.HasNext,
		HasPrevious:  p.HasPrevious,
		NextPage:     p.NextPage,
		PreviousPage: p.PreviousPage,
	}
}
