package consensus

import (
	"encoding/json"

	"consensuscli/pkg/contracts/domain"
)

// ReportRequest is the body of a trackDemoBoards report call
type ReportRequest struct {
	Auth      Auth   `json:"auth"`
	Paging    Paging `json:"paging"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Auth carries the credentials. Consensus reads the source name from here.
type Auth struct {
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	UserEmail  string `json:"user_email"`
	SourceName string `json:"source_name"`
}

// Paging is the paging cursor sent with each request
type Paging struct {
	Limit  int    `json:"limit"`
	Page   int    `json:"page"`
	SortBy string `json:"sortBy"`
	Order  string `json:"order"`
}

// ReportResponse is the envelope returned by the report endpoint
type ReportResponse struct {
	Data *ReportData `json:"data"`
}

// ReportData holds the items and the echoed paging block
type ReportData struct {
	Items  []json.RawMessage `json:"items"`
	Paging *domain.Paging    `json:"paging"`
}
