// Package cli implements the one-shot authorization check command:
// gatehouse <principal> <action> <resource>.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/loader"
)

// Exit codes. A misconfiguration must be visibly distinct from a deny so
// operators never conflate "access denied" with "system broken".
const (
	ExitAllow = 0
	ExitDeny  = 1
	ExitError = 2
)

// App holds the dependencies of one CLI invocation.
type App struct {
	Loader       *loader.Loader
	Logger       *slog.Logger
	Stdout       io.Writer
	PolicyPath   string
	EntitiesPath string
}

// Run evaluates one request from positional arguments and returns the
// process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) != 3 {
		fmt.Fprintln(a.Stdout, "usage: gatehouse <principal> <action> <resource>")
		return ExitError
	}
	principal, action, resourceRef := args[0], args[1], args[2]

	policies, err := a.Loader.LoadPolicies(a.PolicyPath)
	if err != nil {
		return a.configError(err)
	}
	entities, catalog, err := a.Loader.LoadEntities(a.EntitiesPath)
	if err != nil {
		return a.configError(err)
	}
	resource, err := catalog.Resolve(resourceRef)
	if err != nil {
		return a.configError(err)
	}

	eval := authz.NewEvaluator(entities, policies)
	dec, err := eval.Evaluate(ctx, authz.Request{
		Principal: principal,
		Action:    action,
		Resource:  resource,
	})
	if err != nil {
		return a.configError(err)
	}

	if dec.Allowed() {
		fmt.Fprintln(a.Stdout, Greeting(principal, action, resourceRef))
		return ExitAllow
	}
	if a.Logger != nil {
		a.Logger.Info("authorization denied",
			slog.String("principal", principal),
			slog.String("action", action),
			slog.String("resource", resourceRef),
			slog.Any("determining", dec.Determining),
			slog.String("reason", dec.Reason))
	}
	fmt.Fprintln(a.Stdout, "Authorization denied.")
	return ExitDeny
}

// Greeting formats the message printed on an allowed request.
func Greeting(principal, action, resource string) string {
	return fmt.Sprintf("Hello %s! You can %s %s.", principal, action, resource)
}

func (a *App) configError(err error) int {
	if a.Logger != nil {
		a.Logger.Error("configuration error", slog.Any("error", err))
	}
	if errors.Is(err, authz.ErrUnknownPrincipal) || errors.Is(err, loader.ErrUnknownResource) {
		fmt.Fprintf(a.Stdout, "configuration error: %v (not an access decision)\n", err)
		return ExitError
	}
	fmt.Fprintf(a.Stdout, "configuration error: %v\n", err)
	return ExitError
}
