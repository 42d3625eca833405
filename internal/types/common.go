package types

// Page is the list envelope for paginated resources.
type Page struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}
