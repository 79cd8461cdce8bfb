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
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/artcopy/pkg/copier"
	"github.com/walteh/artcopy/pkg/log"
	"github.com/walteh/artcopy/pkg/manifest"
	"gitlab.com/tozd/go/errors"
)

// ErrNoProjectProcessed is returned when a run copied no project at all.
var ErrNoProjectProcessed = errors.Base("no project processed")

// 🔧 Options contains everything a run needs
type Options struct {
	// Manifest is the loaded manifest
	Manifest *manifest.Manifest
	// SourceDir is the root install sources resolve against
	SourceDir string
	// DestinationDir overrides the manifest directory as destination root
	DestinationDir string
	// Filter selects projects by name
	Filter manifest.Filter
	// Policy decides how existing destination directories are treated
	Policy copier.Policy
	// DryRun reports what would be copied without writing
	DryRun bool
	// Fs is the file system to copy on, the OS file system when nil
	Fs afero.Fs
}

// 🏃 Run copies every selected project of the manifest, one at a time.
// A failing project is reported and the run moves on to the next one.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Manifest == nil {
		return nil, errors.Errorf("manifest is required")
	}
	if opts.SourceDir == "" {
		return nil, errors.Errorf("source directory is required")
	}

	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	dstRoot := opts.DestinationDir
	if dstRoot == "" {
		dstRoot = opts.Manifest.Dir()
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	engine := copier.New(fs, copier.Options{
		Policy: opts.Policy,
		DryRun: opts.DryRun,
		OnFile: func(ctx context.Context, f copier.FileResult) {
			console.LogFileOperation(ctx, log.FileOperation{
				Path:       f.Path,
				Status:     f.Status.String(),
				Size:       f.Size,
				IsNew:      f.Status == copier.StatusNew,
				IsModified: f.Status == copier.StatusModified,
				IsSkipped:  f.Status == copier.StatusSkipped,
			})
		},
	})

	logger.Debug().
		Str("source", opts.SourceDir).
		Str("destination", dstRoot).
		Str("filter", string(opts.Filter)).
		Str("policy", opts.Policy.String()).
		Bool("dry_run", opts.DryRun).
		Msg("starting run")

	summary := &Summary{}
	for _, project := range opts.Manifest.Projects {
		if !opts.Filter.Match(project.Name) {
			logger.Debug().Str("project", project.Name).Str("filter", string(opts.Filter)).Msg("skipping project")
			summary.Results = append(summary.Results, ProjectResult{
				Project: project,
				Outcome: OutcomeSkipped,
			})
			continue
		}

		summary.Results = append(summary.Results, runProject(ctx, console, engine, project, opts.SourceDir, dstRoot))
	}

	console.Summary(summary.Rows())

	if summary.Count(OutcomeCopied) == 0 {
		failed := summary.Count(OutcomeFailed)
		if failed == 0 {
			return summary, errors.Errorf("%w: no project matches %q", ErrNoProjectProcessed, string(opts.Filter))
		}
		return summary, errors.Errorf("%w: all %d matched projects failed", ErrNoProjectProcessed, failed)
	}

	return summary, nil
}

// runProject copies a single project and never fails the run
func runProject(ctx context.Context, console *log.Logger, engine *copier.Engine, project manifest.Project, srcRoot, dstRoot string) ProjectResult {
	ctx = zerolog.Ctx(ctx).With().Str("project", project.Name).Logger().WithContext(ctx)

	console.StartProject(ctx, log.ProjectOperation{
		Name:        project.Name,
		Ref:         project.Ref,
		Job:         project.Job,
		Source:      srcRoot,
		Destination: dstRoot,
	})

	report, err := engine.CopyMapping(ctx, srcRoot, dstRoot, project.Install, project.Exclude)
	console.EndProject(ctx, err)

	result := ProjectResult{
		Project: project,
		Report:  report,
		Outcome: OutcomeCopied,
	}
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = errors.Errorf("project %s: %w", project.Name, err)
	}
	return result
}
