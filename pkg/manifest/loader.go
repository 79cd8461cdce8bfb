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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the manifest name used when none is given.
const DefaultFile = "artifacts.yml"

var (
	// ErrRead is wrapped by every failure to read the manifest file.
	ErrRead = errors.Base("reading manifest")
	// ErrParse is wrapped by every malformed or incomplete manifest.
	ErrParse = errors.Base("parsing manifest")
)

// 🗂️ Format is a manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf picks the format from the file extension. Unknown extensions are read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// record is the YAML and JSON shape of one project
type record struct {
	Project string            `yaml:"project" json:"project"`
	Ref     string            `yaml:"ref" json:"ref"`
	Job     string            `yaml:"job" json:"job"`
	Install map[string]string `yaml:"install" json:"install"`
	Exclude []string          `yaml:"exclude" json:"exclude"`
}

// hclManifest is the HCL shape of a manifest
type hclManifest struct {
	Projects []struct {
		Name    string            `hcl:"name,label"`
		Ref     *string           `hcl:"ref,optional"`
		Job     *string           `hcl:"job,optional"`
		Install map[string]string `hcl:"install"`
		Exclude []string          `hcl:"exclude,optional"`
	} `hcl:"project,block"`
}

// 🎯 Load reads and parses the manifest at path
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w %s: %w", ErrRead, path, err)
	}

	projects, err := Parse(ctx, data, FormatOf(path))
	if err != nil {
		return nil, errors.Errorf("%s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("projects", len(projects)).Msg("manifest loaded")

	return &Manifest{
		Projects: projects,
		location: path,
	}, nil
}

// 📝 Parse decodes manifest data in the given format
func Parse(ctx context.Context, data []byte, format Format) ([]Project, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatHCL:
		return parseHCL(data)
	default:
		return parseYAML(data)
	}
}

func parseYAML(data []byte) ([]Project, error) {
	var records []record
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Errorf("%w: empty document", ErrParse)
		}
		return nil, errors.Errorf("%w: YAML: %w", ErrParse, err)
	}
	return fromRecords(records)
}

func parseJSON(data []byte) ([]Project, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Errorf("%w: JSON: %w", ErrParse, err)
	}
	return fromRecords(records)
}

func parseHCL(data []byte) ([]Project, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "manifest.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: HCL: %s", ErrParse, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var m hclManifest
	diags = gohcl.DecodeBody(file.Body, evalCtx, &m)
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: HCL: %s", ErrParse, diags.Error())
	}

	projects := make([]Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		project := Project{
			Name:    p.Name,
			Install: p.Install,
			Exclude: p.Exclude,
		}
		if p.Ref != nil {
			project.Ref = *p.Ref
		}
		if p.Job != nil {
			project.Job = *p.Job
		}
		if project.Install == nil {
			project.Install = map[string]string{}
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// fromRecords converts decoded records, checking the required fields
func fromRecords(records []record) ([]Project, error) {
	projects := make([]Project, 0, len(records))
	for i, r := range records {
		if r.Project == "" {
			return nil, errors.Errorf("%w: entry %d: project is required", ErrParse, i)
		}
		if r.Install == nil {
			return nil, errors.Errorf("%w: entry %d (%s): install is required", ErrParse, i, r.Project)
		}
		projects = append(projects, Project{
			Name:    r.Project,
			Ref:     r.Ref,
			Job:     r.Job,
			Install: r.Install,
			Exclude: r.Exclude,
		})
	}
	return projects, nil
}
