package data

import (
	"math"
	"strings"

	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

// MaxPageSize caps the page_size a client may ask for.
const MaxPageSize = 100

// MovieSortSafelist lists the accepted values of the sort query parameter.
var MovieSortSafelist = []string{"id", "title", "year", "-id", "-title", "-year"}

// Filters describes ordering and pagination of a list request. A zero
// PageSize means the list is not paginated.
type Filters struct {
	Page         int
	PageSize     int
	Sort         string
	SortSafelist []string
}

// Paginated reports whether the client asked for a single page.
func (f Filters) Paginated() bool {
	return f.PageSize > 0
}

// sortColumn check the client-provided Sort field matches one of the entries
// in our safelist and if it does, extract the column name from the Sort field
// by stripping the leading hypen character (if one exists).
func (f Filters) sortColumn() string {
	for _, safeValue := range f.SortSafelist {
		if f.Sort == safeValue {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	panic("unsafe sort parameter: " + f.Sort)
}

// sortDirection return the sort direction ("ASC" or "DESC") depending on the prefix character
// of the Sort field.
func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

// limit returns nil for an unpaginated list; LIMIT NULL returns every row.
func (f Filters) limit() any {
	if !f.Paginated() {
		return nil
	}
	return f.PageSize
}

func (f Filters) offset() int {
	if !f.Paginated() {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// ValidateFilters validate filters value to conform business rules.
// For each invalid filters value will be added as an error to v with
// corresponding key and appropriate message.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	if f.Paginated() {
		v.Check(f.PageSize <= MaxPageSize, "page_size", "must be a maximum of 100")
	} else {
		v.Check(f.PageSize == 0, "page_size", "must be greater than zero")
	}
	v.Check(validator.In(f.Sort, f.SortSafelist...), "sort", "invalid sort value")
}

// Metadata struct for holding the pagination metadata.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records"`
}

// calculateMetadata calculates the pagination metadata from the total number
// of records, current page and page size. LastPage is rounded up, so 12
// records with a page size of 5 give LastPage 3. An unpaginated list only
// carries TotalRecords.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 || pageSize == 0 {
		return Metadata{TotalRecords: totalRecords}
	}

	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
