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

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/artcopy/cmd/artcopy/commands"
	"github.com/walteh/artcopy/cmd/artcopy/opts"
	"github.com/walteh/artcopy/pkg/log"
	"github.com/walteh/artcopy/pkg/manifest"
	"github.com/walteh/artcopy/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// Handler runs the root command
type Handler struct {
	opts *opts.RootOpts
}

// NewCommand creates the root command
func NewCommand() *cobra.Command {
	h := &Handler{opts: &opts.RootOpts{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}}

	cmd := &cobra.Command{
		Use:   "artcopy [manifest]",
		Short: "Copy build artifacts as described by an artifacts manifest",
		Long: `artcopy reads an artifacts manifest (artifacts.yml by default) and, for each
project in it, copies the listed install paths from the source directory into
the directory holding the manifest.

Existing destination files are overwritten. Existing destination directories
are merged unless --replace is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h.opts.ManifestPath = manifest.DefaultFile
			if len(args) == 1 {
				h.opts.ManifestPath = args[0]
			}
			h.opts.Stdout = cmd.OutOrStdout()
			h.opts.Stderr = cmd.ErrOrStderr()
			return h.Run(cmd.Context())
		},
	}

	addRootFlags(cmd, h.opts)
	cmd.AddCommand(commands.NewVersionCmd())

	return cmd
}

// addRootFlags adds the root flags to cmd
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.Flags().StringVarP(&o.Project, "project", "p", "", "only process projects whose name contains this string")
	cmd.Flags().StringVarP(&o.SourceDir, "source-dir", "s", "", "directory install sources are relative to")
	cmd.Flags().BoolVar(&o.Replace, "replace", false, "remove destination directories before copying into them")
	cmd.Flags().BoolVarP(&o.DryRun, "dry-run", "n", false, "report what would be copied without writing")
	cmd.Flags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// newLogger configures zerolog based on flags
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.Disabled
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// Run loads the manifest and copies every selected project
func (h *Handler) Run(ctx context.Context) error {
	o := h.opts

	zlog := newLogger(o.Stderr, o.Debug)
	ctx = zlog.WithContext(ctx)
	console := log.New(o.Stdout, zlog)
	ctx = log.NewContext(ctx, console)

	workDir := o.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	sourceDir, err := operation.ResolveSourceDir(o.ManifestPath, o.SourceDir, workDir)
	if err != nil {
		return err
	}

	manifestPath := o.ManifestPath
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(workDir, manifestPath)
	}

	m, err := manifest.Load(ctx, manifestPath)
	if err != nil {
		return err
	}

	console.Header("copying artifacts")
	console.Infof("manifest %s", manifestPath)
	console.Infof("source   %s", sourceDir)
	if o.DryRun {
		console.Warning("dry run, nothing will be written")
	}
	console.LogNewline()

	summary, err := operation.Run(ctx, operation.Options{
		Manifest:  m,
		SourceDir: sourceDir,
		Filter:    manifest.Filter(o.Project),
		Policy:    o.Policy(),
		DryRun:    o.DryRun,
	})
	if err != nil {
		return err
	}

	copied := summary.Count(operation.OutcomeCopied)
	failed := summary.Count(operation.OutcomeFailed)
	if failed > 0 {
		console.Warningf("%d projects copied, %d failed", copied, failed)
	} else {
		console.Successf("%d projects copied", copied)
	}

	return nil
}
