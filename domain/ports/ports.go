package ports

import (
	"context"

	"github.com/Skryldev/flactranscode/domain/model"
)

// Command is one external process invocation
type Command struct {
	Path string
	Args []string
}

// StageResult is the exit status of one pipeline stage
type StageResult struct {
	Command  Command
	ExitCode int
	// BrokenPipe is set when the stage died of SIGPIPE
	BrokenPipe bool
	Stderr     string
	Err        error
}

// ToolRunner runs a chain of commands, each stage's stdout feeding the
// next stage's stdin, and reports the status of every stage.
type ToolRunner interface {
	RunPipeline(ctx context.Context, cmds []Command) ([]StageResult, error)
}

// MetadataReader extracts what the transcoder needs from a FLAC file
type MetadataReader interface {
	// StreamInfo returns the STREAMINFO block
	StreamInfo(ctx context.Context, path string) (model.StreamInfo, error)

	// Tags returns the Vorbis comments
	Tags(ctx context.Context, path string) (model.Tags, error)
}

// StorageProvider abstracts the output side of the filesystem
type StorageProvider interface {
	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// EnsureDir creates path and its parents; existing directories are fine
	EnsureDir(ctx context.Context, path string) error

	// Prepare readies outputPath for writing, overwriting any existing file
	Prepare(ctx context.Context, outputPath string) error

	// Remove deletes a file; a missing file is not an error
	Remove(ctx context.Context, path string) error

	// CopyFile copies src to dst, creating dst's parent directories
	CopyFile(ctx context.Context, src, dst string) error
}
