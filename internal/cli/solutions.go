package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/interactive-sql-tutor/sqltutor/internal/util"
)

// solutionsFile is the problem -> solution file mapping kept for submit.
func solutionsFile(dataDir string) string {
	return filepath.Join(dataDir, "solutions.yaml")
}

// loadSolutionFiles returns an empty map if the file does not exist.
func loadSolutionFiles(dataDir string) (map[int]string, error) {
	data, err := os.ReadFile(solutionsFile(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return map[int]string{}, nil
		}
		return nil, err
	}
	mapping := make(map[int]string)
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

func saveSolutionFiles(dataDir string, mapping map[int]string) error {
	path := solutionsFile(dataDir)
	if len(mapping) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := yaml.Marshal(mapping)
	if err != nil {
		return err
	}
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// rememberSolutionFile records file as the solution of problem; the path is
// stored absolute so later runs from another directory still find it.
func rememberSolutionFile(dataDir string, problem int, file string) error {
	abs, err := util.GetAbsolutePath(file)
	if err != nil {
		return err
	}
	mapping, err := loadSolutionFiles(dataDir)
	if err != nil {
		return err
	}
	mapping[problem] = abs
	return saveSolutionFiles(dataDir, mapping)
}

func forgetSolutionFile(dataDir string, problem int) error {
	mapping, err := loadSolutionFiles(dataDir)
	if err != nil {
		return err
	}
	delete(mapping, problem)
	return saveSolutionFiles(dataDir, mapping)
}

func listSolutionFiles(w io.Writer, dataDir string) error {
	mapping, err := loadSolutionFiles(dataDir)
	if err != nil {
		return err
	}
	if len(mapping) == 0 {
		fmt.Fprintln(w, "No solution files remembered.")
		return nil
	}

	ids := make([]int, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%d: %s\n", id, mapping[id])
	}
	return nil
}
