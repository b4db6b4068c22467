package cmd

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"
)

// PatchCLI returns a context which contains a CLI value with the output streams
// set to buffers, and an in-memory filesystem. PatchCLI is used by tests to
// record the output produced by CLI commands. Use newCLI(ctx) to reach the
// CLI value.
func PatchCLI(ctx context.Context) (context.Context, BufferedStreams) {
	bufs := BufferedStreams{
		Stdin:  new(bytes.Buffer),
		Stdout: new(bytes.Buffer),
		Stderr: new(bytes.Buffer),
		Opened: new([]string),
	}
	cli := &CLI{
		Stdout: io.MultiWriter(bufs.Stdout, os.Stdout),
		Stderr: io.MultiWriter(bufs.Stderr, os.Stderr),
		Stdin:  bufs.Stdin,
		Fs:     afero.NewMemMapFs(),
		Clock:  clock.New(),
		openFile: func(path string) error {
			*bufs.Opened = append(*bufs.Opened, path)
			return nil
		},
	}
	return context.WithValue(ctx, ctxKey, cli), bufs
}

type BufferedStreams struct {
	Stdin  *bytes.Buffer
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
	// Opened records the files passed to the open hook.
	Opened *[]string
}
