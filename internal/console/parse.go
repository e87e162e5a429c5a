// Package console implements the interactive item entry loop.
//
// Each input line is either a control command (done, quit, exit, undo), a
// blank line, or item data in the form
//
//	name // cost [// owner, owner...]
//
// The "//" delimiter keeps commas free for item names and the owner list.
package console

import (
	"fmt"
	"strings"

	"expenses/internal/core"
)

// Separator splits the fields of an item line.
const Separator = "//"

type EntryKind int

const (
	EntryInvalid EntryKind = iota
	EntryBlank
	EntryFinish
	EntryUndo
	EntryItem
)

func (k EntryKind) String() string {
	switch k {
	case EntryBlank:
		return "blank"
	case EntryFinish:
		return "finish"
	case EntryUndo:
		return "undo"
	case EntryItem:
		return "item"
	default:
		return "invalid"
	}
}

// Entry is the tagged result of parsing one input line. Item is set for
// EntryItem, Err for EntryInvalid.
type Entry struct {
	Kind EntryKind
	Item core.Item
	// Shared is true when the line named owners other than the default one.
	Shared bool
	Err    error
}

// ParseLine classifies and parses a single console line.
func ParseLine(line string) Entry {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "done", "quit", "exit":
		return Entry{Kind: EntryFinish}
	case "undo":
		return Entry{Kind: EntryUndo}
	case "":
		return Entry{Kind: EntryBlank}
	}

	fields := strings.Split(line, Separator)
	if len(fields) < 2 {
		return Entry{Kind: EntryInvalid, Err: core.ErrMissingSeparator}
	}
	name := strings.TrimSpace(fields[0])
	cost, err := core.ParseSignedAmount(fields[1])
	if err != nil {
		return Entry{Kind: EntryInvalid, Err: fmt.Errorf("%w: %q", core.ErrNonNumericCost, strings.TrimSpace(fields[1]))}
	}
	if name == "" {
		return Entry{Kind: EntryInvalid, Err: core.ErrEmptyItemName}
	}
	if len(fields) > 2 {
		// A blank owner field, or one naming only the default owner, is personal.
		if owners := core.NewOwners(strings.Split(fields[2], ",")...); !owners.IsDefault() {
			return Entry{Kind: EntryItem, Item: core.NewSharedItem(name, cost, owners), Shared: true}
		}
	}
	return Entry{Kind: EntryItem, Item: core.NewItem(name, cost)}
}
