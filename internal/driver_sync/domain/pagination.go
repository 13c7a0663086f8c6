package domain

// BulkPage is one page of a paginated bulk listing. PerPage, LastPage and
// Total are only trusted from the first page of a fetch.
type BulkPage struct {
	CurrentPage int
	PerPage     int
	LastPage    int
	Total       int
	Rows        []any
}

func (p BulkPage) HasNext() bool {
	return p.CurrentPage < p.LastPage
}

// Chunk splits ids into consecutive pages of at most size elements.
func Chunk(ids []DriverID, size int) [][]DriverID {
	if size <= 0 || len(ids) == 0 {
		return nil
	}

	pages := make([][]DriverID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		pages = append(pages, ids[start:end])
	}
	return pages
}
