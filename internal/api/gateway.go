package api

import (
	"context"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/upload"
)

// Gateway is the full set of platform calls; *Client implements it.
type Gateway interface {
	Register(ctx context.Context, req RegisterRequest) (domain.Profile, error)
	Login(ctx context.Context, email, password string) (domain.Profile, error)
	Logout(ctx context.Context, refresh string) error
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (domain.Profile, error)
	ListProblems(ctx context.Context, filter domain.ProblemFilter) ([]domain.ProblemSummary, error)
	GetProblem(ctx context.Context, id int) (domain.Problem, error)
	SubmitAttempt(ctx context.Context, id int, req AttemptRequest) (domain.AttemptResult, error)
	AttemptHistory(ctx context.Context, id int) ([]domain.Attempt, error)
	RequestHint(ctx context.Context, prompt string) (string, error)
	UploadProblem(ctx context.Context, bundle upload.Bundle) error
	AllowedSchemas(ctx context.Context) (map[string][]domain.SchemaColumn, error)
	RunQuery(ctx context.Context, query string) (domain.QueryResult, error)
	GenerateQuery(ctx context.Context, prompt string) (string, error)
}

var _ Gateway = (*Client)(nil)
