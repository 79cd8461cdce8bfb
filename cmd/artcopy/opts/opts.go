package opts

import (
	"io"

	"github.com/walteh/artcopy/pkg/copier"
)

// RootOpts contains the options shared by the root command and its handler
type RootOpts struct {
	ManifestPath string // Manifest to run, relative to WorkDir unless absolute
	Project      string // Project name filter
	SourceDir    string // Source root, empty to use WorkDir
	Replace      bool   // Remove destination directories before copying
	DryRun       bool   // Report without writing
	Debug        bool   // Structured debug logs on Stderr

	WorkDir string    // Working directory, the process one when empty
	Stdout  io.Writer // Progress lines
	Stderr  io.Writer // Structured logs
}

// Policy maps the replace flag to a copy policy.
func (o *RootOpts) Policy() copier.Policy {
	if o.Replace {
		return copier.PolicyReplace
	}
	return copier.PolicyMerge
}
