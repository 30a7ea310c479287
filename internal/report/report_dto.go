package report

type TypeSummary struct {
	Type      string `json:"type"`
	Allotted  int    `json:"allotted"`
	Remaining int    `json:"remaining"`
	Consumed  int    `json:"consumed"`
}

type SummaryResponse struct {
	Username string        `json:"username"`
	Types    []TypeSummary `json:"types"`
	// Accepted leave days per calendar month of the start date, Jan..Dec,
	// capped for chart scaling.
	MonthlyDays [12]int `json:"monthlyDays"`
}
