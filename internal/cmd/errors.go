package cmd

import "errors"

var (
	//lint:ignore ST1005, user facing error
	ErrNonInteractive = errors.New(`Prompts are disabled because input is not a terminal`)
	//lint:ignore ST1005, user facing error
	ErrSessionExpired = errors.New(`Your session has expired. Use "pharmabi login" to log in again`)
)
