package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrorCode categorizes errors
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeToolMissing ErrorCode = "TOOL_MISSING"
	ErrCodeTranscode   ErrorCode = "TRANSCODE_ERROR"
	ErrCodeUsage       ErrorCode = "USAGE_ERROR"
	ErrCodeCopy        ErrorCode = "COPY_ERROR"
)

// Sentinel causes wrapped by TranscodeError.
var (
	ErrMultichannel      = errors.New("more than 2 channels, downmix unsupported")
	ErrUnknownSampleRate = errors.New("sample rate is not a multiple of 44.1 or 48 kHz")
	ErrBrokenPipe        = errors.New("pipeline stage terminated by SIGPIPE")
	ErrOutputCollision   = errors.New("another source file maps to the same output path")
	ErrTagCheck          = errors.New("tags missing from transcoded file")
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitUsage      = 2
	ExitJobsFailed = 3
)

// TranscodeBaseError is the base structured error
type TranscodeBaseError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *TranscodeBaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *TranscodeBaseError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports a source path that is missing or not a directory.
type NotFoundError struct {
	TranscodeBaseError
	Path string
}

func NewNotFoundError(path, message string, cause error) *NotFoundError {
	return &NotFoundError{
		TranscodeBaseError: TranscodeBaseError{
			Code:    ErrCodeNotFound,
			Message: message,
			Cause:   cause,
		},
		Path: path,
	}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Path)
}

// ToolMissingError reports an external utility that could not be located.
type ToolMissingError struct {
	TranscodeBaseError
	Tool string
}

func NewToolMissingError(tool string, cause error) *ToolMissingError {
	return &ToolMissingError{
		TranscodeBaseError: TranscodeBaseError{
			Code:    ErrCodeToolMissing,
			Message: "required tool not found",
			Cause:   cause,
		},
		Tool: tool,
	}
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Tool)
}

// TranscodeError represents the failure of a single file/profile job
type TranscodeError struct {
	TranscodeBaseError
	File     string
	Profile  string
	Command  []string
	ExitCode int
	Stderr   string
}

func NewTranscodeError(file, profile, message string, cause error) *TranscodeError {
	return &TranscodeError{
		TranscodeBaseError: TranscodeBaseError{
			Code:    ErrCodeTranscode,
			Message: message,
			Cause:   cause,
		},
		File:     file,
		Profile:  profile,
		ExitCode: -1,
	}
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("[%s] %s (file=%q profile=%s", e.Code, e.Message, e.File, e.Profile)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" exit=%d", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf(" stderr=%q", truncate(e.Stderr, 200))
	}
	msg += ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// CopyError reports a companion file that could not be copied into an
// output directory. Like a TranscodeError it fails the file, not the run.
type CopyError struct {
	TranscodeBaseError
	File string
}

func NewCopyError(file, message string, cause error) *CopyError {
	return &CopyError{
		TranscodeBaseError: TranscodeBaseError{
			Code:    ErrCodeCopy,
			Message: message,
			Cause:   cause,
		},
		File: file,
	}
}

func (e *CopyError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.File)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// UsageError represents invalid command-line input
type UsageError struct {
	TranscodeBaseError
}

func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{
		TranscodeBaseError: TranscodeBaseError{
			Code:    ErrCodeUsage,
			Message: fmt.Sprintf(format, args...),
		},
	}
}

func (e *UsageError) Error() string {
	return e.Message
}

// Is enables errors.Is checks
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As enables errors.As checks
func As[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

// ExitCode maps an error returned by a run to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if _, ok := As[*UsageError](err); ok {
		return ExitUsage
	}
	for _, e := range multierr.Errors(err) {
		if !isFileFailure(e) {
			return ExitFatal
		}
	}
	return ExitJobsFailed
}

func isFileFailure(err error) bool {
	if _, ok := As[*TranscodeError](err); ok {
		return true
	}
	_, ok := As[*CopyError](err)
	return ok
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
