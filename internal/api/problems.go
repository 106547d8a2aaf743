package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
)

type AttemptRequest struct {
	UserQuery string `json:"user_query"`
	HintsUsed int    `json:"hints_used"`
	TimeTaken int    `json:"time_taken"`
}

func (o *Client) ListProblems(ctx context.Context, filter domain.ProblemFilter) (ret []domain.ProblemSummary, err error) {
	err = o.doJSON(ctx, false, http.MethodGet, "/sql-problems/"+filter.Query(), nil, &ret)
	return
}

func (o *Client) GetProblem(ctx context.Context, id int) (ret domain.Problem, err error) {
	err = o.doJSON(ctx, false, http.MethodGet, fmt.Sprintf("/problems/%d", id), nil, &ret)
	return
}

func (o *Client) SubmitAttempt(ctx context.Context, id int, req AttemptRequest) (ret domain.AttemptResult, err error) {
	err = o.doJSON(ctx, true, http.MethodPost, fmt.Sprintf("/problems/%d/attempt/", id), req, &ret)
	return
}

func (o *Client) AttemptHistory(ctx context.Context, id int) (ret []domain.Attempt, err error) {
	err = o.doJSON(ctx, true, http.MethodGet, fmt.Sprintf("/problems/%d/history/", id), nil, &ret)
	return
}

// RequestHint sends a prompt to the hint model. Free-text questions go
// through the same endpoint.
func (o *Client) RequestHint(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Hint string `json:"hint"`
	}
	if err := o.doJSON(ctx, true, http.MethodPost, "/llm/hint/", map[string]string{"prompt": prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Hint, nil
}
