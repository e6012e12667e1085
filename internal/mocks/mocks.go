package mocks

import (
	"context"
	"sync"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
)

// MockToolRunner is a test double for ports.ToolRunner
type MockToolRunner struct {
	RunFunc func(ctx context.Context, cmds []ports.Command) ([]ports.StageResult, error)

	mu  sync.Mutex
	Ran [][]ports.Command
}

func (m *MockToolRunner) RunPipeline(ctx context.Context, cmds []ports.Command) ([]ports.StageResult, error) {
	m.mu.Lock()
	m.Ran = append(m.Ran, cmds)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmds)
	}
	results := make([]ports.StageResult, len(cmds))
	for i, c := range cmds {
		results[i] = ports.StageResult{Command: c}
	}
	return results, nil
}

// Calls returns a snapshot of the recorded pipelines
func (m *MockToolRunner) Calls() [][]ports.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]ports.Command(nil), m.Ran...)
}

// MockMetadataReader is a test double for ports.MetadataReader
type MockMetadataReader struct {
	StreamInfoFunc func(ctx context.Context, path string) (model.StreamInfo, error)
	TagsFunc       func(ctx context.Context, path string) (model.Tags, error)
}

func (m *MockMetadataReader) StreamInfo(ctx context.Context, path string) (model.StreamInfo, error) {
	if m.StreamInfoFunc != nil {
		return m.StreamInfoFunc(ctx, path)
	}
	return model.StreamInfo{SampleRate: 44100, BitsPerSample: 16, Channels: 2}, nil
}

func (m *MockMetadataReader) Tags(ctx context.Context, path string) (model.Tags, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc(ctx, path)
	}
	return model.Tags{}, nil
}

// MockStorageProvider is a test double for ports.StorageProvider
type MockStorageProvider struct {
	ExistsFunc    func(ctx context.Context, path string) (bool, error)
	EnsureDirFunc func(ctx context.Context, path string) error
	PrepareFunc   func(ctx context.Context, path string) error
	RemoveFunc    func(ctx context.Context, path string) error
	CopyFileFunc  func(ctx context.Context, src, dst string) error

	mu      sync.Mutex
	Removed []string
}

func (m *MockStorageProvider) Exists(ctx context.Context, path string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, path)
	}
	return true, nil
}

func (m *MockStorageProvider) EnsureDir(ctx context.Context, path string) error {
	if m.EnsureDirFunc != nil {
		return m.EnsureDirFunc(ctx, path)
	}
	return nil
}

func (m *MockStorageProvider) Prepare(ctx context.Context, path string) error {
	if m.PrepareFunc != nil {
		return m.PrepareFunc(ctx, path)
	}
	return nil
}

func (m *MockStorageProvider) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	m.Removed = append(m.Removed, path)
	m.mu.Unlock()
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, path)
	}
	return nil
}

func (m *MockStorageProvider) CopyFile(ctx context.Context, src, dst string) error {
	if m.CopyFileFunc != nil {
		return m.CopyFileFunc(ctx, src, dst)
	}
	return nil
}

// RemovedPaths returns a snapshot of the removed paths
func (m *MockStorageProvider) RemovedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Removed...)
}
