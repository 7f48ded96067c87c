package sim

import (
	"log"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// ItemLogger prints every item that passes a set of hook positions.
type ItemLogger struct {
	LogHookBase

	positions []*HookPos
}

// NewItemLogger returns an ItemLogger that writes into the logger. If no
// position is given, items at all positions are logged.
func NewItemLogger(logger *log.Logger, positions ...*HookPos) *ItemLogger {
	h := new(ItemLogger)
	h.Logger = logger
	h.positions = positions

	return h
}

// Func writes the item information into the logger.
func (h *ItemLogger) Func(ctx HookCtx) {
	if !h.interested(ctx.Pos) {
		return
	}

	domainName := ""
	if named, ok := ctx.Domain.(Named); ok {
		domainName = named.Name()
	}

	h.Logger.Printf("%d,%s,%s,%v", ctx.Now, domainName, ctx.Pos.Name, ctx.Item)
}

func (h *ItemLogger) interested(pos *HookPos) bool {
	if len(h.positions) == 0 {
		return true
	}

	for _, p := range h.positions {
		if p == pos {
			return true
		}
	}

	return false
}
