package shared

const (
	// DefaultPageSize applies when a listing request omits the limit.
	DefaultPageSize = 200
	// MaxPageSize is the hard cap on any listing request.
	MaxPageSize = 500
)

// Page is the limit/offset window applied to listing queries.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps raw limit/offset values to the listing contract.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
