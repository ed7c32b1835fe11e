package api

import "github.com/finstmt/fsg/pkg/report"

// ReportsResponse is the catalog listing payload
type ReportsResponse struct {
	Reports []report.Summary `json:"reports"`
	Total   int              `json:"total"`
}

// RowDetail describes one row of a report definition
type RowDetail struct {
	Position   int    `json:"position"`
	Kind       string `json:"kind"`
	Label      string `json:"label,omitempty"`
	Variable   string `json:"variable,omitempty"`
	Expression string `json:"expression,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
}

// ReportDetail is the full definition view of one report
type ReportDetail struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Variables  []string    `json:"variables"`
	Rows       []RowDetail `json:"rows"`
	LTMEnabled bool        `json:"ltmEnabled"`
	MonthsBack int         `json:"monthsBack,omitempty"`
}

// DatasetsResponse is the dataset inventory payload
type DatasetsResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
	Total    int           `json:"total"`
}

// DatasetInfo summarises one loaded dataset
type DatasetInfo struct {
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	Years       []int  `json:"years"`
	Fingerprint string `json:"fingerprint"`
}
