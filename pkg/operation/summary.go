// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"github.com/walteh/artcopy/pkg/copier"
	"github.com/walteh/artcopy/pkg/log"
	"github.com/walteh/artcopy/pkg/manifest"
)

// 🏁 Outcome is what happened to one project during a run
type Outcome int

const (
	OutcomeSkipped Outcome = iota // Filtered out, no I/O
	OutcomeCopied                 // Every install entry copied
	OutcomeFailed                 // An install entry failed
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// 📄 ProjectResult is the outcome of one project
type ProjectResult struct {
	Project manifest.Project
	Outcome Outcome
	Report  *copier.Report // nil for skipped projects
	Err     error          // set for failed projects
}

// 📊 Summary collects the project results of a run, in manifest order
type Summary struct {
	Results []ProjectResult
}

// Count returns the number of projects with the given outcome.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Names returns the names of the projects with the given outcome.
func (s *Summary) Names(o Outcome) []string {
	var names []string
	for _, r := range s.Results {
		if r.Outcome == o {
			names = append(names, r.Project.Name)
		}
	}
	return names
}

// Rows converts attempted projects into summary table rows.
func (s *Summary) Rows() []log.ProjectSummary {
	var rows []log.ProjectSummary
	for _, r := range s.Results {
		if r.Outcome == OutcomeSkipped {
			continue
		}
		row := log.ProjectSummary{
			Name:    r.Project.Name,
			Outcome: r.Outcome.String(),
		}
		if r.Report != nil {
			row.Files = len(r.Report.Files) - r.Report.Count(copier.StatusSkipped)
		}
		if r.Err != nil {
			row.Detail = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}
