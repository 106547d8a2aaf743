// Package upload assembles the three files an instructor sends to create a
// problem: the JSON metadata, the SQL that builds the problem tables and the
// reference solution.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xeipuuv/gojsonschema"

	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	"github.com/interactive-sql-tutor/sqltutor/internal/util"
)

const (
	FieldMetadata = "metadata_file"
	FieldProblem  = "problem_file"
	FieldSolution = "solution_file"
)

var ErrFilesMissing = errors.New("missing upload files")

const metadataSchema = `{
	"type": "object",
	"required": ["title", "description", "difficulty_level", "topic_id", "requires_order",
		"tables", "input_data", "hints", "expected_output"],
	"properties": {
		"title":            {"type": "string", "minLength": 1},
		"description":      {"type": "string"},
		"difficulty_level": {"type": "string"},
		"topic_id":         {"type": "integer"},
		"requires_order":   {"type": "boolean"},
		"tables":           {"type": "array"},
		"input_data":       {"type": "object"},
		"hints":            {"type": "array", "items": {"type": "string"}},
		"expected_output":  {"type": "array"}
	}
}`

type File struct {
	Name string
	Data []byte
}

// ReadFile loads a local file; ~ is expanded.
func ReadFile(path string) (ret *File, err error) {
	if path, err = util.GetAbsolutePath(path); err != nil {
		return
	}
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	ret = &File{Name: filepath.Base(path), Data: data}
	return
}

type Bundle struct {
	Metadata *File
	Problem  *File
	Solution *File
}

type Part struct {
	Field string
	File  *File
}

// Parts lists the files in form order.
func (b Bundle) Parts() []Part {
	return []Part{
		{Field: FieldMetadata, File: b.Metadata},
		{Field: FieldProblem, File: b.Problem},
		{Field: FieldSolution, File: b.Solution},
	}
}

func (b Bundle) Complete() bool {
	return b.Metadata != nil && b.Problem != nil && b.Solution != nil
}

// CheckComplete fails with the user-facing "upload all files" message when any
// of the three files is absent.
func (b Bundle) CheckComplete() error {
	if !b.Complete() {
		return fmt.Errorf("%w: %s", ErrFilesMissing, i18n.T("upload_files_missing"))
	}
	return nil
}

// Check runs the local pre-checks: all files present, metadata matching the
// required field set, SQL files being plain text.
func (b Bundle) Check() (err error) {
	if err = b.CheckComplete(); err != nil {
		return
	}
	if err = ValidateMetadata(b.Metadata.Data); err != nil {
		return
	}
	for _, f := range []*File{b.Problem, b.Solution} {
		if !IsText(f.Data) {
			return fmt.Errorf(i18n.T("upload_not_text"), f.Name, mimetype.Detect(f.Data).String())
		}
	}
	return
}

func ValidateMetadata(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(metadataSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf(i18n.T("upload_metadata_unreadable"), err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf(i18n.T("upload_metadata_invalid"), strings.Join(problems, "; "))
	}
	return nil
}

func IsText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
