package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

var Topics = []string{
	"Aggregation Functions",
	"In-Line View",
	"Join",
	"Select",
	"Sub Query",
	"Window Function",
	"With",
}

var Difficulties = []string{"Easy", "Medium", "Hard"}

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type TableSchema struct {
	TableName string   `json:"table_name"`
	Columns   []Column `json:"columns"`
}

// Rows is a result grid whose first row holds the column headers.
type Rows [][]any

func (r Rows) Header() []any {
	if len(r) == 0 {
		return nil
	}
	return r[0]
}

func (r Rows) Body() [][]any {
	if len(r) < 2 {
		return nil
	}
	return r[1:]
}

// CellString renders one result cell the way tables show it; null is empty.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

type ProblemSummary struct {
	ProblemID       int     `json:"problem_id"`
	Title           string  `json:"title"`
	Topic           string  `json:"topic"`
	DifficultyLevel string  `json:"difficulty_level"`
	Acceptance      float64 `json:"acceptance"`
}

type Problem struct {
	ProblemID       int             `json:"problem_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DifficultyLevel string          `json:"difficulty_level"`
	Topic           string          `json:"topic"`
	Acceptance      float64         `json:"acceptance"`
	RequiresOrder   bool            `json:"requires_order"`
	Tables          []TableSchema   `json:"tables"`
	InputData       map[string]Rows `json:"input_data"`
	Hints           []string        `json:"hints"`
	ExpectedOutput  Rows            `json:"expected_output"`
}

// FormatAcceptance renders an acceptance rate the way the problem list shows it.
func FormatAcceptance(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

type ProblemFilter struct {
	Difficulty string
	Topic      string
}

// Query renders the filter as the list endpoint's query string, including the
// leading "?". Empty filters render as "".
func (f ProblemFilter) Query() string {
	v := url.Values{}
	if f.Difficulty != "" {
		v.Set("difficulty", f.Difficulty)
	}
	if f.Topic != "" {
		v.Set("topic", f.Topic)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// PrevNext returns the neighbouring problem ids; prev is 0 on the first problem.
func PrevNext(id int) (prev, next int) {
	if id > 1 {
		prev = id - 1
	}
	return prev, id + 1
}

func ParseProblemID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid problem id %q", raw)
	}
	return id, nil
}
