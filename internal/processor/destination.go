package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPolicy selects where results are written: back over the source or
// into a mirrored output tree.
type OutputPolicy struct {
	mirrorRoot string
}

func Overwrite() OutputPolicy {
	return OutputPolicy{}
}

func Mirror(outputRoot string) OutputPolicy {
	return OutputPolicy{mirrorRoot: outputRoot}
}

func (p OutputPolicy) IsMirror() bool {
	return p.mirrorRoot != ""
}

func (p OutputPolicy) MirrorRoot() string {
	return p.mirrorRoot
}

func (p OutputPolicy) String() string {
	if !p.IsMirror() {
		return "overwrite"
	}
	return "mirror:" + p.mirrorRoot
}

// Resolve returns the path the result for src should be written to.
// With mkdir set, parent directories of a mirrored destination are created.
func (p OutputPolicy) Resolve(src, inputRoot string, mkdir bool) (string, error) {
	if !p.IsMirror() {
		return src, nil
	}

	rel, err := filepath.Rel(inputRoot, src)
	if err != nil {
		return "", newError(ErrKindPath, src, err)
	}
	if rel == "." || !isWithin(src, inputRoot) {
		return "", newError(ErrKindPath, src, fmt.Errorf("not under input root %s", inputRoot))
	}

	// A mirror root equal to the input root lands on the source itself,
	// which the atomic replace in writeImage handles like an overwrite.
	dest := filepath.Join(p.mirrorRoot, rel)

	if mkdir {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", newError(ErrKindWrite, dest, err)
		}
	}

	return dest, nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
