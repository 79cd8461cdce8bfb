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

package copier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ErrCopy is wrapped by every failed mapping entry.
var ErrCopy = errors.Base("copy failed")

// 🧭 Policy decides what happens to an existing destination directory
type Policy int

const (
	// PolicyMerge copies into the existing directory and only overwrites conflicting files.
	PolicyMerge Policy = iota
	// PolicyReplace removes the existing directory before copying.
	PolicyReplace
)

// String returns a string representation of Policy
func (p Policy) String() string {
	switch p {
	case PolicyReplace:
		return "replace"
	default:
		return "merge"
	}
}

// 🔧 Options configures an Engine
type Options struct {
	Policy Policy
	DryRun bool // Classify files without writing anything

	// OnFile is called after every file is handled.
	OnFile func(ctx context.Context, f FileResult)
}

// 📦 Engine copies install mappings between two roots
type Engine struct {
	fs   afero.Fs
	opts Options
}

// 🏭 New creates an engine working on fs
func New(fs afero.Fs, opts Options) *Engine {
	return &Engine{
		fs:   fs,
		opts: opts,
	}
}

// NewOS creates an engine on the operating system file system.
func NewOS(opts Options) *Engine {
	return New(afero.NewOsFs(), opts)
}

// 🏃 CopyMapping copies every install entry from srcRoot to dstRoot.
// Entries run in lexical order of their source key and the first failure stops the rest.
func (e *Engine) CopyMapping(ctx context.Context, srcRoot, dstRoot string, mapping map[string]string, exclude []string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	report := &Report{}

	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return report, errors.Errorf("%w: invalid exclude pattern %q", ErrCopy, pattern)
		}
	}

	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, srcRel := range keys {
		if err := ctx.Err(); err != nil {
			return report, errors.Errorf("%w: %w", ErrCopy, err)
		}

		src := srcRoot
		if srcRel != "." {
			src = filepath.Join(srcRoot, srcRel)
		}
		dst := filepath.Join(dstRoot, mapping[srcRel])

		logger.Debug().Str("source", src).Str("destination", dst).Msg("copying entry")

		c := &entryCopy{
			engine:  e,
			srcRoot: srcRoot,
			dstRoot: dstRoot,
			exclude: exclude,
			report:  report,
		}
		if err := c.run(ctx, src, dst); err != nil {
			return report, errors.Errorf("%w: %s -> %s: %w", ErrCopy, srcRel, mapping[srcRel], err)
		}
		report.Entries++
	}

	return report, nil
}

// entryCopy holds the state of one mapping entry
type entryCopy struct {
	engine  *Engine
	srcRoot string
	dstRoot string
	exclude []string
	report  *Report
}

func (c *entryCopy) run(ctx context.Context, src, dst string) error {
	fs := c.engine.fs
	opts := c.engine.opts

	info, err := fs.Stat(src)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	if !opts.DryRun {
		parent := filepath.Dir(dst)
		if err := fs.MkdirAll(parent, 0o755); err != nil {
			return errors.Errorf("creating parent directory %s: %w", parent, err)
		}
	}

	if !info.IsDir() {
		return c.copyFile(ctx, src, dst, info.Mode().Perm())
	}

	if isWithin(src, dst) {
		return errors.Errorf("destination %s is inside source %s", dst, src)
	}

	if opts.Policy == PolicyReplace {
		if isWithin(dst, src) {
			return errors.Errorf("refusing to replace %s, it contains source %s", dst, src)
		}
		if err := c.clear(ctx, dst); err != nil {
			return err
		}
	}

	return c.copyDir(ctx, src, dst)
}

// clear removes an existing destination directory for the replace policy
func (c *entryCopy) clear(ctx context.Context, dst string) error {
	if filepath.Clean(dst) == filepath.Clean(c.dstRoot) {
		return errors.Errorf("refusing to replace the destination root %s", dst)
	}

	exists, err := afero.DirExists(c.engine.fs, dst)
	if err != nil {
		return errors.Errorf("checking destination %s: %w", dst, err)
	}
	if !exists {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Str("destination", dst).Msg("removing existing destination directory")
	if c.engine.opts.DryRun {
		return nil
	}
	if err := c.engine.fs.RemoveAll(dst); err != nil {
		return errors.Errorf("removing destination %s: %w", dst, err)
	}
	return nil
}

// copyDir merges the contents of src into dst, depth first
func (c *entryCopy) copyDir(ctx context.Context, src, dst string) error {
	fs := c.engine.fs

	if !c.engine.opts.DryRun {
		if err := fs.MkdirAll(dst, 0o755); err != nil {
			return errors.Errorf("creating directory %s: %w", dst, err)
		}
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return errors.Errorf("reading directory %s: %w", src, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		childSrc := filepath.Join(src, entry.Name())
		childDst := filepath.Join(dst, entry.Name())

		if c.excluded(childSrc) {
			zerolog.Ctx(ctx).Debug().Str("source", childSrc).Msg("excluded by pattern")
			if !entry.IsDir() {
				c.record(ctx, FileResult{
					Source:      childSrc,
					Destination: childDst,
					Path:        c.relDst(childDst),
					Status:      StatusSkipped,
				})
			}
			continue
		}

		// ReadDir uses Lstat, symlinks are followed here
		info, err := fs.Stat(childSrc)
		if err != nil {
			return errors.Errorf("reading source %s: %w", childSrc, err)
		}

		if info.IsDir() {
			if err := c.copyDir(ctx, childSrc, childDst); err != nil {
				return err
			}
			continue
		}

		if err := c.copyFile(ctx, childSrc, childDst, info.Mode().Perm()); err != nil {
			return err
		}
	}

	return nil
}

// copyFile writes src to dst through a temp file and a rename
func (c *entryCopy) copyFile(ctx context.Context, src, dst string, mode os.FileMode) error {
	fs := c.engine.fs

	prevSum, existed, err := c.checksum(dst)
	if err != nil {
		return err
	}

	result := FileResult{
		Source:      src,
		Destination: dst,
		Path:        c.relDst(dst),
	}

	in, err := fs.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	h := sha256.New()

	if c.engine.opts.DryRun {
		n, err := io.Copy(h, in)
		if err != nil {
			return errors.Errorf("reading %s: %w", src, err)
		}
		result.Size = n
	} else {
		tmp, err := afero.TempFile(fs, filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
		if err != nil {
			return errors.Errorf("creating temp file for %s: %w", dst, err)
		}
		tmpName := tmp.Name()

		n, err := io.Copy(io.MultiWriter(tmp, h), in)
		if err != nil {
			_ = tmp.Close()
			_ = fs.Remove(tmpName)
			return errors.Errorf("copying %s: %w", src, err)
		}
		if err := tmp.Close(); err != nil {
			_ = fs.Remove(tmpName)
			return errors.Errorf("closing temp file for %s: %w", dst, err)
		}
		if err := fs.Chmod(tmpName, mode); err != nil {
			_ = fs.Remove(tmpName)
			return errors.Errorf("setting mode on %s: %w", dst, err)
		}
		if err := fs.Rename(tmpName, dst); err != nil {
			_ = fs.Remove(tmpName)
			return errors.Errorf("renaming temp file to %s: %w", dst, err)
		}
		result.Size = n
	}

	result.Checksum = hex.EncodeToString(h.Sum(nil))
	switch {
	case !existed:
		result.Status = StatusNew
	case prevSum == result.Checksum:
		result.Status = StatusUnchanged
	default:
		result.Status = StatusModified
	}

	c.record(ctx, result)
	return nil
}

// checksum hashes an existing destination file. A missing file is not an error.
func (c *entryCopy) checksum(path string) (string, bool, error) {
	fs := c.engine.fs

	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, errors.Errorf("checking destination %s: %w", path, err)
	}
	if info.IsDir() {
		return "", false, errors.Errorf("destination %s is a directory", path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return "", false, errors.Errorf("opening destination %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", false, errors.Errorf("reading destination %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), true, nil
}

func (c *entryCopy) excluded(src string) bool {
	if len(c.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(c.srcRoot, src)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (c *entryCopy) relDst(dst string) string {
	rel, err := filepath.Rel(c.dstRoot, dst)
	if err != nil {
		return dst
	}
	return filepath.ToSlash(rel)
}

func (c *entryCopy) record(ctx context.Context, f FileResult) {
	c.report.Files = append(c.report.Files, f)
	if c.engine.opts.OnFile != nil {
		c.engine.opts.OnFile(ctx, f)
	}
}

// isWithin reports whether path is dir or below it
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
