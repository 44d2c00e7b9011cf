package domain

// Page is one bounded batch of records returned by a single report call
type Page struct {
	Number  int      `json:"page"`
	Limit   int      `json:"limit"`
	Records []Record `json:"items"`
	Paging  *Paging  `json:"paging,omitempty"`
}

// Paging is the paging block the API echoes back. It is nil when the
// response did not carry one.
type Paging struct {
	Page       int  `json:"page"`
	CountItems int  `json:"countItems"`
	NextPage   *int `json:"nextPage,omitempty"`
	Limit      int  `json:"limit"`
}

// HasMore returns the explicit "more data" signal from the response. The
// second value is false when the response did not provide one.
func (p *Page) HasMore() (more bool, known bool) {
	if p.Paging == nil || p.Paging.NextPage == nil {
		return false, false
	}
	return *p.Paging.NextPage > 0, true
}

// Len returns the number of records on the page
func (p *Page) Len() int {
	return len(p.Records)
}
