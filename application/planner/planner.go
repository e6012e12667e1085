package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
)

// Characters dropped from directory names.
var dirNameReplacer = strings.NewReplacer(
	`\`, "", "/", "", ":", "", "*", "", "?", "", `"`, "", "<", "", ">", "", "|", "",
)

// Characters replaced by "_" in output file basenames.
var fileNameReplacer = strings.NewReplacer(
	"?", "_", "<", "_", ">", "_", `\`, "_", "*", "_", "|", "_", `"`, "_",
)

// DirName returns the output directory name for a source directory name,
// e.g. DirName("Album", ProfileMP3320) == "Album (MP3-320)".
func DirName(sourceName string, p model.Profile) string {
	return fmt.Sprintf("%s (%s)", dirNameReplacer.Replace(sourceName), p.Label())
}

// Planner computes and creates output directories
type Planner struct {
	storage ports.StorageProvider
}

// New creates a planner writing through storage
func New(storage ports.StorageProvider) *Planner {
	return &Planner{storage: storage}
}

// Plan builds one output directory per profile under outputRoot and
// creates it. An empty outputRoot means the parent of sourceRoot. An
// outputRoot inside sourceRoot is a UsageError: later scans would pick up
// the transcodes as input.
func (p *Planner) Plan(ctx context.Context, sourceRoot, outputRoot string, profiles []model.Profile) (model.Plan, error) {
	sourceRoot = filepath.Clean(sourceRoot)
	if outputRoot == "" {
		outputRoot = filepath.Dir(sourceRoot)
	}
	outputRoot = filepath.Clean(outputRoot)
	inside, err := within(sourceRoot, outputRoot)
	if err != nil {
		return model.Plan{}, err
	}
	if inside {
		return model.Plan{}, pkgerrors.NewUsageError("output directory %s is inside the source directory %s", outputRoot, sourceRoot)
	}

	plan := model.Plan{SourceRoot: sourceRoot, OutputRoot: outputRoot}
	base := filepath.Base(sourceRoot)
	for _, prof := range profiles {
		dir := filepath.Join(outputRoot, DirName(base, prof))
		if dir == sourceRoot {
			return model.Plan{}, fmt.Errorf("output directory %s would overwrite the source", dir)
		}
		if err := p.storage.EnsureDir(ctx, dir); err != nil {
			return model.Plan{}, err
		}
		plan.Dirs = append(plan.Dirs, model.OutputDir{Profile: prof, Path: dir})
	}
	return plan, nil
}

// within reports whether path is root or lies below it.
func within(root, path string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// OutputPath maps a FLAC path relative to the source root to its output
// path inside dir: same relative directory, sanitized basename, profile
// extension.
func OutputPath(dir model.OutputDir, relPath string) string {
	relDir, name := filepath.Split(relPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(dir.Path, relDir, fileNameReplacer.Replace(stem)+dir.Profile.Ext())
}
