package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Skryldev/flactranscode/domain/model"
	"github.com/Skryldev/flactranscode/domain/ports"
	"github.com/Skryldev/flactranscode/infrastructure/toolexec"
	"github.com/Skryldev/flactranscode/internal/mocks"
	pkgerrors "github.com/Skryldev/flactranscode/pkg/errors"
	"github.com/Skryldev/flactranscode/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var tools = toolexec.Tools{Sox: "sox", Flac: "flac", Lame: "lame"}

func newJob(profile model.Profile, out string) model.Job {
	return model.Job{
		ID:         "job-1",
		SourcePath: "/music/Demo/track.flac",
		RelPath:    "track.flac",
		Profile:    profile,
		OutputPath: out,
	}
}

func streamInfo(rate, bits, channels int) *mocks.MockMetadataReader {
	return &mocks.MockMetadataReader{
		StreamInfoFunc: func(context.Context, string) (model.StreamInfo, error) {
			return model.StreamInfo{SampleRate: rate, BitsPerSample: bits, Channels: channels}, nil
		},
	}
}

func TestResampleRate(t *testing.T) {
	tests := []struct {
		rate, bits int
		want       int
		wantErr    error
	}{
		{44100, 16, 0, nil},
		{48000, 16, 0, nil},
		{32000, 16, 0, nil},
		{44100, 24, 44100, nil},
		{48000, 24, 48000, nil},
		{88200, 24, 44100, nil},
		{176400, 24, 44100, nil},
		{96000, 24, 48000, nil},
		{192000, 16, 48000, nil},
		{50000, 24, 0, pkgerrors.ErrUnknownSampleRate},
	}
	for _, tt := range tests {
		got, err := ResampleRate(model.StreamInfo{SampleRate: tt.rate, BitsPerSample: tt.bits})
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "rate %d", tt.rate)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "rate=%d bits=%d", tt.rate, tt.bits)
	}
}

func TestRunBuildsDecodeEncodePipeline(t *testing.T) {
	runner := &mocks.MockToolRunner{}
	meta := streamInfo(96000, 24, 2)
	meta.TagsFunc = func(context.Context, string) (model.Tags, error) {
		return model.Tags{Title: "Track"}, nil
	}
	p := NewPipeline(runner, meta, &mocks.MockStorageProvider{}, tools, nil)

	require.NoError(t, p.Run(context.Background(), newJob(model.ProfileMP3V0, "/out/Demo (V0)/track.mp3")))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, "sox", calls[0][0].Path)
	assert.Contains(t, calls[0][0].Args, "48000")
	assert.Equal(t, "lame", calls[0][1].Path)
	assert.Equal(t, []string{
		"-S", "-V", "0", "--vbr-new", "--ignore-tag-errors",
		"--tt", "Track",
		"-", "/out/Demo (V0)/track.mp3",
	}, calls[0][1].Args)
}

func TestRunCDQualityUsesFlacDecoder(t *testing.T) {
	runner := &mocks.MockToolRunner{}
	p := NewPipeline(runner, &mocks.MockMetadataReader{}, &mocks.MockStorageProvider{}, tools, nil)

	require.NoError(t, p.Run(context.Background(), newJob(model.ProfileFLAC16, "/out/Demo (FLAC16)/track.flac")))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "flac", calls[0][0].Path)
	assert.Equal(t, []string{"-dcs", "--", "/music/Demo/track.flac"}, calls[0][0].Args)
	assert.Equal(t, "flac", calls[0][1].Path)
}

func TestRunProbeFailureIsTranscodeError(t *testing.T) {
	runner := &mocks.MockToolRunner{}
	meta := &mocks.MockMetadataReader{
		StreamInfoFunc: func(context.Context, string) (model.StreamInfo, error) {
			return model.StreamInfo{}, errors.New("invalid FLAC signature")
		},
	}
	p := NewPipeline(runner, meta, &mocks.MockStorageProvider{}, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileMP3320, "/out/x.mp3"))
	te, ok := pkgerrors.As[*pkgerrors.TranscodeError](err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "/music/Demo/track.flac", te.File)
	assert.Equal(t, "mp3-320", te.Profile)
	assert.Empty(t, runner.Calls())
}

func TestRunRejectsMultichannel(t *testing.T) {
	p := NewPipeline(&mocks.MockToolRunner{}, streamInfo(48000, 24, 6), &mocks.MockStorageProvider{}, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileFLAC16, "/out/x.flac"))
	assert.ErrorIs(t, err, pkgerrors.ErrMultichannel)
}

func TestRunRejectsOddSampleRate(t *testing.T) {
	p := NewPipeline(&mocks.MockToolRunner{}, streamInfo(50000, 24, 2), &mocks.MockStorageProvider{}, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileFLAC16, "/out/x.flac"))
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownSampleRate)
}

func TestRunTagFailureIsNotFatal(t *testing.T) {
	meta := &mocks.MockMetadataReader{
		TagsFunc: func(context.Context, string) (model.Tags, error) {
			return model.Tags{}, errors.New("corrupt vorbis comment")
		},
	}
	p := NewPipeline(&mocks.MockToolRunner{}, meta, &mocks.MockStorageProvider{}, tools, nil)

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithContext(context.Background(), logger.FromZap(zap.New(core)).With(zap.String("job_id", "job-1")))
	assert.NoError(t, p.Run(ctx, newJob(model.ProfileMP3V0, "/out/x.mp3")))

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "untagged")
	assert.Equal(t, "job-1", warnings[0].ContextMap()["job_id"])
}

func sourceTags() model.Tags {
	return model.Tags{Title: "Intro", Artist: "Band", Album: "Record", Track: 1}
}

func TestRunChecksOutputTags(t *testing.T) {
	var read []string
	meta := &mocks.MockMetadataReader{
		TagsFunc: func(_ context.Context, path string) (model.Tags, error) {
			read = append(read, path)
			return sourceTags(), nil
		},
	}
	p := NewPipeline(&mocks.MockToolRunner{}, meta, &mocks.MockStorageProvider{}, tools, nil)

	require.NoError(t, p.Run(context.Background(), newJob(model.ProfileMP3320, "/out/x.mp3")))
	assert.Equal(t, []string{"/music/Demo/track.flac", "/out/x.mp3"}, read)
}

func TestRunMissingOutputTagsFails(t *testing.T) {
	meta := &mocks.MockMetadataReader{
		TagsFunc: func(_ context.Context, path string) (model.Tags, error) {
			if strings.HasSuffix(path, ".flac") {
				return sourceTags(), nil
			}
			return model.Tags{Title: "Intro", Album: "Record"}, nil
		},
	}
	store := &mocks.MockStorageProvider{}
	p := NewPipeline(&mocks.MockToolRunner{}, meta, store, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileMP3V0, "/out/x.mp3"))
	assert.ErrorIs(t, err, pkgerrors.ErrTagCheck)
	assert.ErrorContains(t, err, "artist, track number")
	assert.Equal(t, []string{"/out/x.mp3"}, store.RemovedPaths())
}

func TestRunUnreadableOutputTagsFails(t *testing.T) {
	meta := &mocks.MockMetadataReader{
		TagsFunc: func(_ context.Context, path string) (model.Tags, error) {
			if strings.HasSuffix(path, ".flac") {
				return sourceTags(), nil
			}
			return model.Tags{}, errors.New("no tags found")
		},
	}
	p := NewPipeline(&mocks.MockToolRunner{}, meta, &mocks.MockStorageProvider{}, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileMP3V0, "/out/x.mp3"))
	assert.ErrorIs(t, err, pkgerrors.ErrTagCheck)
}

func TestRunToolFailure(t *testing.T) {
	runner := &mocks.MockToolRunner{
		RunFunc: func(_ context.Context, cmds []ports.Command) ([]ports.StageResult, error) {
			return []ports.StageResult{
				{Command: cmds[0], ExitCode: 1, Stderr: "ERROR: lost sync", Err: errors.New("exit status 1")},
				{Command: cmds[1]},
			}, nil
		},
	}
	store := &mocks.MockStorageProvider{}
	p := NewPipeline(runner, &mocks.MockMetadataReader{}, store, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileMP3320, "/out/x.mp3"))
	te, ok := pkgerrors.As[*pkgerrors.TranscodeError](err)
	require.True(t, ok)
	assert.Equal(t, 1, te.ExitCode)
	assert.Equal(t, "ERROR: lost sync", te.Stderr)
	assert.Equal(t, "flac", te.Command[0])
	assert.Equal(t, []string{"/out/x.mp3"}, store.RemovedPaths())
}

func TestRunBrokenPipeOnly(t *testing.T) {
	runner := &mocks.MockToolRunner{
		RunFunc: func(_ context.Context, cmds []ports.Command) ([]ports.StageResult, error) {
			return []ports.StageResult{
				{Command: cmds[0], ExitCode: -1, BrokenPipe: true, Err: errors.New("signal: broken pipe")},
				{Command: cmds[1]},
			}, nil
		},
	}
	p := NewPipeline(runner, &mocks.MockMetadataReader{}, &mocks.MockStorageProvider{}, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileMP3320, "/out/x.mp3"))
	assert.ErrorIs(t, err, pkgerrors.ErrBrokenPipe)
}

func TestRunMissingOutput(t *testing.T) {
	store := &mocks.MockStorageProvider{
		ExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
	}
	p := NewPipeline(&mocks.MockToolRunner{}, &mocks.MockMetadataReader{}, store, tools, nil)

	err := p.Run(context.Background(), newJob(model.ProfileFLAC16, "/out/x.flac"))
	assert.ErrorContains(t, err, "no output")
}

func TestRunCanceledKeepsPartialOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &mocks.MockToolRunner{
		RunFunc: func(_ context.Context, cmds []ports.Command) ([]ports.StageResult, error) {
			cancel()
			return []ports.StageResult{
				{Command: cmds[0], ExitCode: -1, Err: errors.New("signal: killed")},
				{Command: cmds[1], ExitCode: -1, Err: errors.New("signal: killed")},
			}, nil
		},
	}
	store := &mocks.MockStorageProvider{}
	p := NewPipeline(runner, &mocks.MockMetadataReader{}, store, tools, nil)

	err := p.Run(ctx, newJob(model.ProfileFLAC16, "/out/x.flac"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.RemovedPaths())
}
