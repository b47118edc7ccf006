package domain

// Rule is one row of the regulations sheet: a titled excerpt of university
// rule text, tagged with a category for retrieval.
type Rule struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}
