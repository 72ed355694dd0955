package processor

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"texshrink/pkg/imgutil"
)

// Discover walks root and yields every regular file with a supported
// extension. Traversal failures are yielded as jobs carrying Err so the
// caller can record them per file. Directories within skip are not entered.
func Discover(root string, skip string) iter.Seq[Job] {
	return func(yield func(Job) bool) {
		fsys := os.DirFS(root)
		_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			fullPath := filepath.Join(root, filepath.FromSlash(path))
			if walkErr != nil {
				if !yield(Job{Path: fullPath, RelPath: path, Err: walkErr}) {
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if skip != "" && path != "." && isWithin(fullPath, skip) {
					return fs.SkipDir
				}
				return nil
			}
			if imgutil.KindFromExt(path) == imgutil.KindUnknown {
				return nil
			}
			if !d.Type().IsRegular() {
				if d.Type()&fs.ModeSymlink == 0 {
					return nil
				}
				// Broken or looping links surface as per-file errors.
				info, err := os.Stat(fullPath)
				if err != nil {
					if !yield(Job{Path: fullPath, RelPath: path, Err: err}) {
						return fs.SkipAll
					}
					return nil
				}
				if !info.Mode().IsRegular() {
					return nil
				}
			}

			if !yield(Job{Path: fullPath, RelPath: path}) {
				return fs.SkipAll
			}
			return nil
		})
	}
}
