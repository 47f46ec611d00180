package domain

// Page is the backend's paged envelope. Number is zero-based.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalPages       int   `json:"totalPages"`
	TotalElements    int64 `json:"totalElements"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage slices all into the page-th window of size and fills the envelope.
func NewPage[T any](all []T, page, size int) Page[T] {
	if size <= 0 {
		size = len(all)
		if size == 0 {
			size = 1
		}
	}
	if page < 0 {
		page = 0
	}
	total := len(all)
	pages := (total + size - 1) / size
	// compare before multiplying so huge indexes cannot overflow
	start := total
	if page <= total/size {
		start = min(page*size, total)
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, end-start)
	copy(content, all[start:end])
	return Page[T]{
		Content:          content,
		Number:           page,
		Size:             size,
		TotalPages:       pages,
		TotalElements:    int64(total),
		NumberOfElements: len(content),
		First:            page == 0,
		Last:             page >= pages-1,
		Empty:            len(content) == 0,
	}
}
