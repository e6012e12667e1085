package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
)

// FlacExt is the extension of the files to transcode
const FlacExt = ".flac"

// Companion files copied next to the transcodes (lowercase, with leading dot).
var extraExtensions = map[string]bool{
	".cue":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".log":  true,
	".md5":  true,
	".nfo":  true,
	".pdf":  true,
	".png":  true,
	".sfv":  true,
	".txt":  true,
}

// Scan walks root and returns the absolute paths of all FLAC files, sorted
// lexicographically. Dotfiles are skipped.
func Scan(root string) ([]string, error) {
	return collect(root, func(ext string) bool { return ext == FlacExt })
}

// ScanExtras returns the companion files (cue sheets, logs, artwork)
// under root, in the same order and with the same rules as Scan.
func ScanExtras(root string) ([]string, error) {
	return collect(root, func(ext string) bool { return extraExtensions[ext] })
}

// CheckRoot returns the absolute form of root, or a NotFoundError when it
// does not exist or is not a directory.
func CheckRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", pkgerrors.NewNotFoundError(root, "invalid source path", err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", pkgerrors.NewNotFoundError(abs, "source directory does not exist", err)
	}
	if err != nil {
		return "", pkgerrors.NewNotFoundError(abs, "cannot access source directory", err)
	}
	if !info.IsDir() {
		return "", pkgerrors.NewNotFoundError(abs, "source path is not a directory", nil)
	}
	return abs, nil
}

func collect(root string, match func(ext string) bool) ([]string, error) {
	abs, err := CheckRoot(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if match(strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
