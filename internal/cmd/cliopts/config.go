// Package cliopts loads command configuration from defaults, a yaml file,
// environment variables and command line flags.
package cliopts

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"

	"github.com/mcuadros/go-defaults"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

type Options struct {
	// Filename of the yaml file. A missing file is not an error.
	Filename  string
	EnvPrefix string
	Flags     FlagSet
	// Fs is used to read Filename. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Load configuration into target. Sources are applied in this order, each
// one overriding the previous:
//
//  1. the `default` struct tags of target
//  2. the yaml file opts.Filename
//  3. environment variables that start with opts.EnvPrefix
//  4. command line flags in opts.Flags that were set by the user
//
// Fields are matched by convention. The field target.Server.URL is set from
// the yaml key server.url, the environment variable PREFIX_SERVER_URL, or the
// flag --server-url. Use the 'config' struct tag to change the yaml key.
func Load(target interface{}, opts Options) error {
	defaults.SetDefaults(target)

	if opts.Filename != "" {
		if err := loadFromFile(target, opts); err != nil {
			return err
		}
	}
	if opts.EnvPrefix != "" {
		if err := loadFromEnv(target, opts); err != nil {
			return err
		}
	}
	if opts.Flags != nil {
		if err := loadFromFlags(target, opts); err != nil {
			return err
		}
	}
	return nil
}

func loadFromFile(target interface{}, opts Options) error {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	contents, err := afero.ReadFile(fsys, opts.Filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(contents, &raw); err != nil {
		return fmt.Errorf("failed to decode yaml from %s: %w", opts.Filename, err)
	}
	if len(raw) == 0 {
		return nil
	}

	cfg := DecodeConfig(target)
	decoder, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode from %s: %w", opts.Filename, err)
	}
	return nil
}

const fieldTagName = "config"

// DecodeConfig returns the DecoderConfig used by Load.
func DecodeConfig(target interface{}) mapstructure.DecoderConfig {
	return mapstructure.DecoderConfig{
		Squash:           true,
		Result:           target,
		TagName:          fieldTagName,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			hookFlagValue,
			hookSetFromString,
		),
	}
}

// FromString is implemented by types that can be set from a flag, an
// environment variable, or a config file, such as types.URL.
type FromString interface {
	Set(string) error
}

type flagValue interface {
	String() string
	Type() string
}

type flagValueSlice interface {
	GetSlice() []string
}

// hookFlagValue unwraps pflag values into a slice or a string, so the other
// hooks and the weak decoding of mapstructure can convert them.
func hookFlagValue(from reflect.Value, _ reflect.Value) (interface{}, error) {
	source := from.Interface()
	switch v := source.(type) {
	case flagValueSlice:
		return v.GetSlice(), nil
	case flagValue:
		return v.String(), nil
	}
	return source, nil
}

func hookSetFromString(from reflect.Value, to reflect.Value) (interface{}, error) {
	source := from.Interface()
	v, ok := source.(string)
	if !ok {
		return source, nil
	}

	fromString, ok := to.Interface().(FromString)
	if !ok {
		if to.CanAddr() {
			fromString, ok = to.Addr().Interface().(FromString)
		}
		if !ok {
			return source, nil
		}
	}

	err := fromString.Set(v)
	return to.Interface(), err
}
