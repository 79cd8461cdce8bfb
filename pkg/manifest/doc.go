/*
Package manifest loads the artifact manifest and selects projects from it.

	+--------------------+
	|  artifacts.yml     |
	|  (yaml/json/hcl)   |
	+---------+----------+
	          |
	    +-----+-----+
	    |   Load    |
	    +-----+-----+
	          |
	    +-----+-----+
	    |  Filter   |
	    +-----------+

A manifest is an ordered list of projects. Each project names an install
mapping of source-relative paths to destination-relative paths:

	- project: group/libfoo
	  ref: main
	  job: build
	  install:
	    build/libfoo.so: lib/libfoo.so
	    include: include/foo

The source key "." refers to the whole source root. Destinations resolve
against the directory that holds the manifest.

Only structure is checked: every project needs a name and an install
mapping. Duplicate names and empty mappings are accepted, and unknown keys
are ignored.

🔍 Example:

	m, err := manifest.Load(ctx, "artifacts.yml")
	if errors.Is(err, manifest.ErrParse) {
		// malformed manifest
	}
	matched, _ := manifest.Filter("libfoo").Select(m.Projects)
*/
package manifest
