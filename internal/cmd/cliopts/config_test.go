package cliopts

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

type example struct {
	Server   string        `default:"http://localhost:5272/api"`
	Timeout  time.Duration `default:"60s"`
	PageSize int           `default:"10"`
	LogLevel string        `default:"info"`
	Debug    bool
	Columns  []string

	Export exportOptions
	Nested
}

type exportOptions struct {
	OutputDir   string `default:"."`
	FixedPaging bool
}

type Nested struct {
	Window int `default:"5"`
	Label  string
}

func TestLoad_Defaults(t *testing.T) {
	var target example
	err := Load(&target, Options{Filename: "/does/not/exist.yaml", Fs: afero.NewMemMapFs()})
	assert.NilError(t, err)

	expected := example{
		Server:   "http://localhost:5272/api",
		Timeout:  time.Minute,
		PageSize: 10,
		LogLevel: "info",
		Export:   exportOptions{OutputDir: "."},
		Nested:   Nested{Window: 5},
	}
	assert.DeepEqual(t, target, expected)
}

func TestLoad(t *testing.T) {
	content := `
server: https://bi.example.com/api
timeout: 10s
pageSize: 25
logLevel: warn
columns: [id, name]

export:
    outputDir: /tmp/exports

window: 7
label: from-file
`
	f := fs.NewFile(t, t.Name(), fs.WithContent(content))

	t.Setenv("APPNAME_PAGE_SIZE", "50")
	t.Setenv("APPNAME_EXPORT_FIXED_PAGING", "true")
	t.Setenv("APPNAME_LABEL", "from-env")
	t.Setenv("OTHER_LOG_LEVEL", "ignored")

	var target example
	err := Load(&target, Options{Filename: f.Path(), EnvPrefix: "APPNAME"})
	assert.NilError(t, err)

	expected := example{
		Server:   "https://bi.example.com/api",
		Timeout:  10 * time.Second,
		PageSize: 50,
		LogLevel: "warn",
		Columns:  []string{"id", "name"},
		Export: exportOptions{
			OutputDir:   "/tmp/exports",
			FixedPaging: true,
		},
		Nested: Nested{Window: 7, Label: "from-env"},
	}
	assert.DeepEqual(t, target, expected)
}

func TestLoad_WithFlags(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.NilError(t, afero.WriteFile(fsys, "/config.yaml", []byte("pageSize: 25\nlogLevel: warn\n"), 0o600))

	t.Setenv("APPNAME_TIMEOUT", "5s")
	t.Setenv("APPNAME_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("any", pflag.ContinueOnError)
	flags.Int("page-size", 10, "")
	flags.String("log-level", "info", "")
	flags.Duration("timeout", time.Minute, "")
	flags.Bool("debug", false, "")
	flags.String("export-output-dir", "", "")
	flags.StringSlice("columns", nil, "")

	err := flags.Parse([]string{
		"--log-level=debug",
		"--debug",
		"--export-output-dir=/srv/out",
		"--columns=id",
		"--columns=city",
	})
	assert.NilError(t, err)

	var target example
	err = Load(&target, Options{
		Filename:  "/config.yaml",
		EnvPrefix: "APPNAME",
		Flags:     flags,
		Fs:        fsys,
	})
	assert.NilError(t, err)

	expected := example{
		Server:   "http://localhost:5272/api",
		Timeout:  5 * time.Second,
		PageSize: 25,
		LogLevel: "debug",
		Debug:    true,
		Columns:  []string{"id", "city"},
		Export:   exportOptions{OutputDir: "/srv/out"},
		Nested:   Nested{Window: 5},
	}
	assert.DeepEqual(t, target, expected)
}

func TestLoad_InvalidFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.NilError(t, afero.WriteFile(fsys, "/config.yaml", []byte("pageSize: [1, 2"), 0o600))

	var target example
	err := Load(&target, Options{Filename: "/config.yaml", Fs: fsys})
	assert.ErrorContains(t, err, "failed to decode yaml from /config.yaml")
}
