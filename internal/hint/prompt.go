package hint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
)

const (
	firstHintInstruction = "Now give your first hint. Focus on which SQL clauses (e.g., SELECT, JOIN, GROUP BY) the user should consider. Limit your answer to 30 words."
	nextHintInstruction  = "Now give your next hint. Do not repeat earlier hints. Build upon them. Limit your answer to 30 words."
	solutionInstruction  = "Now provide the complete MySQL solution. Only reply with the SQL code."
)

// BuildPrompt describes the problem to the hint model and asks for the
// hint matching step: a clause hint, a follow-up hint, then the solution.
func BuildPrompt(problem domain.Problem, previous []string, step int) string {
	tables := problem.Tables
	if tables == nil {
		tables = []domain.TableSchema{}
	}
	if previous == nil {
		previous = []string{}
	}
	tablesJSON, _ := json.MarshalIndent(tables, "", "  ")
	hintsJSON, _ := json.MarshalIndent(previous, "", "  ")

	var b strings.Builder
	b.WriteString("You are solving a SQL problem. Here is the information:\n\n")
	fmt.Fprintf(&b, "Problem:\n%s\n\n", problem.Description)
	fmt.Fprintf(&b, "Topic:\n%s\n\n", problem.Topic)
	fmt.Fprintf(&b, "Table format:\n%s\n\n", tablesJSON)
	fmt.Fprintf(&b, "Expected Output:\n%s\n\n", flatten(problem.ExpectedOutput))
	fmt.Fprintf(&b, "Previous Hints:\n%s\n\n", hintsJSON)

	switch step {
	case 0:
		b.WriteString(firstHintInstruction)
	case 1:
		b.WriteString(nextHintInstruction)
	default:
		b.WriteString(solutionInstruction)
	}
	return strings.TrimSpace(b.String())
}

// flatten renders a result grid as one comma-separated list of cells.
func flatten(rows domain.Rows) string {
	var cells []string
	for _, row := range rows {
		for _, cell := range row {
			cells = append(cells, domain.CellString(cell))
		}
	}
	return strings.Join(cells, ",")
}
