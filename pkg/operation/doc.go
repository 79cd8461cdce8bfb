/*
Package operation runs a manifest: it filters projects and hands each one to
the copy engine.

	+-------------+
	|  Manifest   |
	+------+------+
	       |
	+------+------+
	|   Filter    |
	+------+------+
	       |
	+------+------+
	|   Copier    |
	| (per proj.) |
	+-------------+

🔄 Flow:
1. Resolve the source root (ResolveSourceDir guards against copying a
   directory onto itself)
2. Walk projects in manifest order
3. Skip projects the filter rejects, without touching the file system
4. Copy the rest one at a time, logging each file
5. Print a summary table

⚡ Failure model:
A failing install entry stops the remaining entries of that project only.
The run keeps going with the next project and fails at the end with
ErrNoProjectProcessed when nothing was copied.

🔍 Example:

	ctx = log.NewContext(ctx, console)
	summary, err := operation.Run(ctx, operation.Options{
		Manifest:  m,
		SourceDir: src,
		Filter:    manifest.Filter("libfoo"),
	})
*/
package operation
