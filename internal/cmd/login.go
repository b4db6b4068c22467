package cmd

import (
	"context"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/logging"
)

type loginCmdOptions struct {
	User           string
	Password       string
	NonInteractive bool
}

func newLoginCmd(cli *CLI) *cobra.Command {
	var options loginCmdOptions

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in to the pharmabi API",
		Args:    NoArgs,
		GroupID: groupCore,
		Example: `# Login (prompt for user name and password)
pharmabi login

# Login with a user name (prompt for password)
pharmabi login --user jdoe

# Login without prompts
export PHARMABI_USER=jdoe
export PHARMABI_PASSWORD=p4ssw0rd
pharmabi login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return login(cmd.Context(), cli, options)
		},
	}

	cmd.Flags().StringVar(&options.User, "user", "", "User name")
	cmd.Flags().StringVar(&options.Password, "password", "", "Password, prefer setting PHARMABI_PASSWORD")
	addNonInteractiveFlag(cmd.Flags(), cli, &options.NonInteractive)
	return cmd
}

func addNonInteractiveFlag(flags *pflag.FlagSet, cli *CLI, bind *bool) {
	flags.BoolVar(bind, "non-interactive", !cli.interactive(), "Disable all prompts for input")
}

func login(ctx context.Context, cli *CLI, options loginCmdOptions) error {
	if options.User == "" {
		if options.NonInteractive {
			return Error{Cause: "missing user name", Suggestion: "Pass --user or set PHARMABI_USER."}
		}
		err := survey.AskOne(
			&survey.Input{Message: "User name:"},
			&options.User,
			cli.surveyIO,
			survey.WithValidator(survey.Required),
		)
		if err != nil {
			return err
		}
	}

	if options.Password == "" {
		if options.NonInteractive {
			return Error{Cause: "missing password", Suggestion: "Set PHARMABI_PASSWORD to log in without a prompt."}
		}
		if err := survey.AskOne(&survey.Password{Message: "Password:"}, &options.Password, cli.surveyIO); err != nil {
			return err
		}
	}

	req := &api.LoginRequest{
		UserName: strings.TrimSpace(options.User),
		Password: options.Password,
	}
	if err := validator.New().Struct(req); err != nil {
		return Error{Cause: "user name and password are required"}
	}

	res, err := cli.apiClient().Login(ctx, req)
	if err != nil {
		return Error{Cause: "login failed", OriginalError: err}
	}

	if err := cli.store.Set(res); err != nil {
		return err
	}
	logging.Debugf("session saved to %s", cli.store.Path())

	name := res.FullName
	if name == "" {
		name = res.UserName
	}
	out := termOutput(cli.Stdout)
	cli.Output("  Logged in as %s", out.String(name).Bold())
	return nil
}
