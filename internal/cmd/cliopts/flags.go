package cliopts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type FlagSet interface {
	VisitAll(fn func(*pflag.Flag))
}

// EnvName returns the environment variable read for flag name: the prefix,
// then the name in upper case with dashes replaced by underscores
// (--page-size is read from PREFIX_PAGE_SIZE).
func EnvName(prefix, name string) string {
	return strings.ToUpper(prefix + "_" + strings.ReplaceAll(name, "-", "_"))
}

// DefaultsFromEnv sets every flag the user did not set from its environment
// variable, when one exists. Call it after the flags are parsed and before
// they are used.
func DefaultsFromEnv(prefix string, flags FlagSet) error {
	var errs []error
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}

		v, exists := os.LookupEnv(EnvName(prefix, flag.Name))
		if !exists {
			return
		}
		if err := flag.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("failed to set %v from environment variable: %w", flag.Name, err))
		}
	})
	return errors.Join(errs...)
}
