// Package domain contains core domain types for the FlowMind backend.
package domain

// Company holds the business profile used to ground AI replies.
type Company struct {
	Name    string `json:"name"`
	Tone    string `json:"tone"`
	Mission string `json:"mission,omitempty"`
}

// Product is a catalog entry matched against inbound message text.
type Product struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Keywords    []string `json:"keywords"`
}

// FAQEntry is a single question/answer pair in the knowledge base.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Knowledge is the full business knowledge document. It is persisted as a
// single JSON file and replaced wholesale on every save.
type Knowledge struct {
	Company  Company    `json:"company"`
	Notes    string     `json:"notes"`
	Products []Product  `json:"products"`
	FAQ      []FAQEntry `json:"faq"`
}

// Normalize ensures products and faq are present as sequences. Matching and
// merge logic rely on both being non-nil after load.
func (k *Knowledge) Normalize() {
	if k.Products == nil {
		k.Products = []Product{}
	}
	if k.FAQ == nil {
		k.FAQ = []FAQEntry{}
	}
}

// DefaultKnowledge returns the fallback document used when the backing file
// is missing or unparsable.
func DefaultKnowledge() *Knowledge {
	return &Knowledge{
		Company:  Company{Name: "FlowMind AI", Tone: "Professional"},
		Notes:    "",
		Products: []Product{},
		FAQ:      []FAQEntry{},
	}
}
