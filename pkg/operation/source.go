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
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// ErrAmbiguousSource is returned when the source root would default to the destination root.
var ErrAmbiguousSource = errors.Base("ambiguous source directory")

// 🧭 ResolveSourceDir returns the absolute source root for a run.
// Without an explicit sourceDir the working directory is used, unless the
// manifest lives in it: then source and destination would be the same
// directory and the run is refused.
func ResolveSourceDir(manifestPath, sourceDir, workDir string) (string, error) {
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", errors.Errorf("resolving working directory: %w", err)
	}

	if sourceDir != "" {
		if !filepath.IsAbs(sourceDir) {
			sourceDir = filepath.Join(workDir, sourceDir)
		}
		return filepath.Clean(sourceDir), nil
	}

	manifestDir := filepath.Dir(manifestPath)
	if !filepath.IsAbs(manifestDir) {
		manifestDir = filepath.Join(workDir, manifestDir)
	}

	if filepath.Clean(manifestDir) == workDir {
		return "", errors.Errorf("%w: %s is in the working directory, pass --source-dir to say where artifacts come from",
			ErrAmbiguousSource, manifestPath)
	}

	return workDir, nil
}
