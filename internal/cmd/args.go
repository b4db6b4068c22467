package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// ExactArgs validates that a cobra command is executed with the exactly
// number of command line arguments, otherwise it returns an error that includes
// the usage string.
func ExactArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		return fmt.Errorf(
			"%q requires exactly %d %s.\nSee \"%s --help\".\n\nUsage:  %s\n",
			cmd.CommandPath(),
			number,
			pluralize("argument", number),
			cmd.CommandPath(),
			cmd.UseLine())
	}
}

func pluralize(word string, number int) string {
	if number == 1 {
		return word
	}
	return word + "s"
}

// NoArgs validates that a cobra command is executed with no arguments, otherwise
// it returns an error that includes the usage string.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf(
		"%q accepts no arguments.\nSee \"%s --help\".\n\nUsage:  %s\n",
		cmd.CommandPath(),
		cmd.CommandPath(),
		cmd.UseLine())
}

// parseID parses a positional id argument.
func parseID(name, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q must be a positive number", name, arg)
	}
	return id, nil
}
