package console

import (
	"context"
	"errors"
	"io"

	"expenses/internal/core"
	"expenses/internal/log"
)

// User-facing messages for recoverable input errors.
const (
	MsgEmptyUndo        = "Cannot undo any further!"
	MsgMissingSeparator = "Put the separator '//' between the item name and cost!"
	MsgNonNumericCost   = "The given cost is not a number!"
	MsgEmptyItemName    = "The item name cannot be empty!"
)

// ItemConsole reads item lines into a single receipt until the user
// finishes. Bad lines are reported and skipped; they never end the loop.
type ItemConsole struct {
	receipt  *core.Receipt
	prompter *Prompter
	logger   *log.Logger
}

func NewItemConsole(receipt *core.Receipt, prompter *Prompter, logger *log.Logger) *ItemConsole {
	if logger == nil {
		logger = log.Discard()
	}
	return &ItemConsole{
		receipt:  receipt,
		prompter: prompter,
		logger:   logger.WithComponent(log.ComponentConsole),
	}
}

// Run drives the loop. End of input finishes like "done". Only read errors
// other than io.EOF and context cancellation are returned.
func (c *ItemConsole) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := c.prompter.ReadLine("  New item (" + c.receipt.TotalCost().Dollars() + ")> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.prompter.Println()
				return nil
			}
			return err
		}
		if c.Apply(ctx, ParseLine(line)) {
			return nil
		}
	}
}

// Apply mutates the receipt for one parsed entry and reports whether the
// loop should stop.
func (c *ItemConsole) Apply(ctx context.Context, e Entry) (done bool) {
	switch e.Kind {
	case EntryFinish:
		return true
	case EntryBlank:
	case EntryUndo:
		it, err := c.receipt.PopItem()
		if err != nil {
			c.prompter.Println(MsgEmptyUndo)
			return false
		}
		c.logger.DebugContext(ctx, "Item removed",
			log.FieldItemName, it.Name,
			log.FieldAmountCents, it.Cost.Cents)
	case EntryItem:
		c.receipt.AddItem(e.Item)
		if e.Shared {
			c.receipt.MarkShared()
		}
		c.logger.DebugContext(ctx, "Item added",
			log.FieldItemName, e.Item.Name,
			log.FieldAmountCents, e.Item.Cost.Cents,
			log.FieldOwners, e.Item.Owners.String())
	default:
		c.prompter.Println(messageFor(e.Err))
		c.logger.DebugContext(ctx, "Rejected item line", log.FieldError, e.Err)
	}
	return false
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingSeparator):
		return MsgMissingSeparator
	case errors.Is(err, core.ErrNonNumericCost):
		return MsgNonNumericCost
	case errors.Is(err, core.ErrEmptyItemName):
		return MsgEmptyItemName
	default:
		return "Invalid item: " + err.Error()
	}
}
