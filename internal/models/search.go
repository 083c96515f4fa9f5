package models

// SearchResultItem is one candidate symbol returned by a symbol search.
type SearchResultItem struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// SearchResponse is the symbol search result envelope.
type SearchResponse struct {
	Count  int                `json:"count"`
	Result []SearchResultItem `json:"result"`
}

// FirstSymbol returns the first non-blank symbol in the result list.
func (r *SearchResponse) FirstSymbol() string {
	if r == nil {
		return ""
	}
	for _, item := range r.Result {
		if item.Symbol != "" {
			return item.Symbol
		}
	}
	return ""
}
