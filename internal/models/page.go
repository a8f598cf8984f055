package models

// Page is one slice of a cursor-paginated listing. NextCursor is the id of
// the last item and is nil on the final page.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}
