package domain

const (
	ResultPass  = "pass"
	ResultWrong = "wrong"

	StatusCompleted = "Completed"
)

type Attempt struct {
	SubmissionDate string  `json:"submission_date"`
	Score          float64 `json:"score"`
	TimeTaken      int     `json:"time_taken"`
	Status         string  `json:"status"`
	HintsUsed      int     `json:"hints_used"`
}

func (a Attempt) Completed() bool {
	return a.Status == StatusCompleted
}

type AttemptResult struct {
	Result   string `json:"result"`
	Feedback string `json:"feedback"`
}

// Passed treats anything but an explicit "wrong" as a pass.
func (r AttemptResult) Passed() bool {
	return r.Result != ResultWrong
}

type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// SchemaColumn is one entry of the instructor's allowed-schema listing.
type SchemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
