package benchmark

import (
	"fmt"
	"os"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	"gopkg.in/yaml.v3"
)

// Requirements derives one requirement row per benchmark and category: the target is the
// benchmark's own rating and the detail is the blueprint task list for that category.
func Requirements(bp Blueprint) []gaps.Requirement {
	out := make([]gaps.Requirement, 0, len(profiles)*len(category.All()))
	for _, p := range profiles {
		tasks := bp[p.Name]
		for _, c := range category.All() {
			detail := strings.Join(tasks[c], "; ")
			if detail == "" {
				detail = fmt.Sprintf("Reach %s's level in %s", p.Name, c.Label())
			}
			out = append(out, gaps.Requirement{
				ID:        p.ID + "-" + string(c),
				Benchmark: p.Name,
				Metric:    c,
				Target:    p.Scores[c],
				Detail:    detail,
			})
		}
	}
	return out
}

// requirementsFile is the YAML layout accepted by LoadRequirements.
type requirementsFile struct {
	Requirements []gaps.Requirement `yaml:"requirements"`
}

// LoadRequirements reads requirement rows from a YAML file. Rows with an unknown metric
// or a target outside the scale are rejected.
func LoadRequirements(path string) ([]gaps.Requirement, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}
	var f requirementsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse requirements: %w", err)
	}
	for i, r := range f.Requirements {
		if err := category.CheckScore(r.Metric, r.Target); err != nil {
			return nil, fmt.Errorf("requirement %d (%s): %w", i, r.ID, err)
		}
		if r.ID == "" {
			f.Requirements[i].ID = fmt.Sprintf("%s-%s", strings.ToLower(strings.ReplaceAll(r.Benchmark, " ", "-")), r.Metric)
		}
	}
	return f.Requirements, nil
}
