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

package manifest

import (
	"path/filepath"
	"slices"
	"strings"
)

// CurrentDir is the install key that refers to the whole source root.
const CurrentDir = "."

// 📦 Project is one named unit of the manifest
type Project struct {
	Name    string            // Project name, matched by the project filter
	Ref     string            // Optional ref the artifacts were built from
	Job     string            // Optional job that produced the artifacts
	Install map[string]string // Source-relative path -> destination-relative path
	Exclude []string          // Doublestar globs of source files to skip
}

// 🔑 Sources returns the install keys in lexical order
func (p Project) Sources() []string {
	keys := make([]string, 0, len(p.Install))
	for k := range p.Install {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// 📝 String returns a short description used in log lines
func (p Project) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Ref != "" {
		b.WriteString("@")
		b.WriteString(p.Ref)
	}
	if p.Job != "" {
		b.WriteString(" (")
		b.WriteString(p.Job)
		b.WriteString(")")
	}
	return b.String()
}

// 📚 Manifest is the parsed manifest file
type Manifest struct {
	Projects []Project
	location string
}

// Location is the path the manifest was loaded from.
func (m *Manifest) Location() string {
	return m.location
}

// Dir is the directory holding the manifest. Install destinations resolve against it.
func (m *Manifest) Dir() string {
	if m.location == "" {
		return "."
	}
	return filepath.Dir(m.location)
}
