package service

import (
	"context"

	"github.com/athlink/cli/pkg/api"
	"github.com/athlink/cli/pkg/app"
	"github.com/athlink/cli/pkg/mutation"
	"github.com/athlink/cli/pkg/output"
	"github.com/athlink/cli/pkg/prompter"
)

// Env is what every service talks to: the app core, the screen and the keyboard
type Env struct {
	App *app.App
	Out *output.Printer
	In  *prompter.Prompter
}

// requireUser restores the session or fails
func (e Env) requireUser(ctx context.Context) (api.User, error) {
	return e.App.RequireSession(ctx)
}

// report prints a mutation's notice and hands back its error
func report[T any](out *output.Printer, res mutation.Result[T]) error {
	out.Notice(res.Notice)
	return res.Err
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
