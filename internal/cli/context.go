// Package cli provides the command-line interface for boxscore.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/app"
)

type ctxKey string

const appKey ctxKey = "app"

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetApp retrieves the Application from the command's context
func GetApp(cmd *cobra.Command) (*app.Application, error) {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey).(*app.Application); ok && a != nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("application not initialized")
}
