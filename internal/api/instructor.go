package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/upload"
)

// UploadProblem posts the three problem files as multipart form data.
func (o *Client) UploadProblem(ctx context.Context, bundle upload.Bundle) (err error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, part := range bundle.Parts() {
		var fw io.Writer
		if fw, err = w.CreateFormFile(part.Field, part.File.Name); err != nil {
			return errors.Wrap(err, "build upload form")
		}
		if _, err = fw.Write(part.File.Data); err != nil {
			return errors.Wrap(err, "build upload form")
		}
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "build upload form")
	}

	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/sql-problems/add/", &body); err != nil {
		return errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return o.do(req, true, nil)
}

// AllowedSchemas maps each queryable table to its columns.
func (o *Client) AllowedSchemas(ctx context.Context) (ret map[string][]domain.SchemaColumn, err error) {
	err = o.doJSON(ctx, true, http.MethodGet, "/instructor/allowed-schema/", nil, &ret)
	return
}

func (o *Client) RunQuery(ctx context.Context, query string) (ret domain.QueryResult, err error) {
	err = o.doJSON(ctx, true, http.MethodPost, "/instructor/query-sql/", map[string]string{"query": query}, &ret)
	return
}

// GenerateQuery turns a natural-language request into SQL. The answer is
// usually markdown with a fenced code block.
func (o *Client) GenerateQuery(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Query string `json:"query"`
	}
	if err := o.doJSON(ctx, true, http.MethodPost, "/llm-analytics/generate/", map[string]string{"prompt": prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Query, nil
}
