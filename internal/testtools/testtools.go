// Package testtools writes shell-script stand-ins for sox, flac and lame.
// The stubs copy their input through to the output path the real tool
// would write, so runs can be checked without real audio.
package testtools

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Skryldev/flactranscode/pkg/config"
)

const soxStub = `#!/bin/sh
cat "$1"
`

const flacStub = `#!/bin/sh
if [ "$1" = "-dcs" ]; then
  cat "$3"
  exit 0
fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then
    out="$2"
    shift
  fi
  shift
done
cat > "$out"
`

const lameStub = `#!/bin/sh
for last; do :; done
cat > "$last"
`

// FailingStub reads stdin and exits 1 with a message on stderr
const FailingStub = `#!/bin/sh
cat > /dev/null
echo "encoder exploded" >&2
exit 1
`

// Write installs the stubs in a temp directory and returns their paths.
// Skips the test where no POSIX shell is available.
func Write(t testing.TB) config.Tools {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tool stubs require a POSIX shell")
	}
	dir := t.TempDir()
	return config.Tools{
		Sox:  Script(t, dir, "sox", soxStub),
		Flac: Script(t, dir, "flac", flacStub),
		Lame: Script(t, dir, "lame", lameStub),
	}
}

// Script writes an executable script named name into dir
func Script(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}
