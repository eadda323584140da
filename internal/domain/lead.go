package domain

// SearchResult is a candidate thread returned by a search provider,
// normalized to one shape regardless of backend.
type SearchResult struct {
	Link    string
	Title   string
	Snippet string
}

// Lead is a thread with a usable contact email. Leads live for one run only.
type Lead struct {
	Keyword   string
	Email     string
	ThreadURL string
	Title     string
	Snippet   string
}

// Key identifies a lead for deduplication.
func (l Lead) Key() string {
	return l.ThreadURL + "|" + l.Email
}
