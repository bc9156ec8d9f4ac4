package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nimbuswallet/core/internal/config"
	"github.com/nimbuswallet/core/internal/output"
	"github.com/nimbuswallet/core/usecases"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

// cmdCtxKey is the key for storing CommandContext in cobra's context.
const cmdCtxKey contextKey = "walletcore-cmd-ctx"

// SetCmdContext stores the CommandContext in the cobra command's context.
func SetCmdContext(cmd *cobra.Command, ctx *CommandContext) {
	cmd.SetContext(context.WithValue(cmd.Context(), cmdCtxKey, ctx))
}

// GetCmdContext retrieves the CommandContext from the cobra command's
// context. Returns nil if no context is set.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	if cmdCtx, ok := ctx.Value(cmdCtxKey).(*CommandContext); ok {
		return cmdCtx
	}
	return nil
}

// CommandContext holds the dependencies a command needs: configuration,
// logging, output formatting, and the wallet façade itself.
type CommandContext struct {
	Cfg *config.Config
	Log *config.Logger
	Fmt *output.Formatter
	Svc *usecases.Service
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, logger *config.Logger, formatter *output.Formatter, svc *usecases.Service) *CommandContext {
	return &CommandContext{Cfg: cfg, Log: logger, Fmt: formatter, Svc: svc}
}
