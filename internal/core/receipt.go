package core

import (
	"fmt"
	"strings"
)

// Receipt is one purchase event being recorded. It is owned by a single
// session and is not safe for concurrent use.
type Receipt struct {
	Date  Date
	Store string
	Type  ReceiptType
	Notes string
	items []Item
}

// NewReceipt starts an empty personal receipt.
func NewReceipt(date Date, store string) *Receipt {
	return &Receipt{Date: date, Store: store, Type: Personal}
}

// AddItem appends the item. An item carrying explicit owners turns the
// receipt into a shared one.
func (r *Receipt) AddItem(it Item) {
	r.items = append(r.items, it)
	if !it.Owners.IsDefault() {
		r.Type = Shared
	}
}

// PopItem removes the most recently added item.
func (r *Receipt) PopItem() (Item, error) {
	if len(r.items) == 0 {
		return Item{}, ErrEmptyUndo
	}
	last := r.items[len(r.items)-1]
	r.items = r.items[:len(r.items)-1]
	return last, nil
}

// AddTax appends the tax pseudo-item paid by the default owner.
func (r *Receipt) AddTax(amount Money) {
	r.AddItem(NewItem(TaxItemName, amount))
}

// SetType sets the classification. Once shared, a receipt stays shared.
func (r *Receipt) SetType(kind ReceiptType) {
	if r.Type == Shared {
		return
	}
	r.Type = kind
}

// MarkShared flips the receipt to shared.
func (r *Receipt) MarkShared() {
	r.Type = Shared
}

func (r *Receipt) SetNotes(notes string) {
	r.Notes = notes
}

// Items returns a copy of the items in insertion order.
func (r *Receipt) Items() []Item {
	return append([]Item(nil), r.items...)
}

func (r *Receipt) Len() int {
	return len(r.items)
}

// TotalCost sums every item, tax included.
func (r *Receipt) TotalCost() Money {
	var total Money
	for _, it := range r.items {
		total = total.Add(it.Cost)
	}
	return total
}

// ItemList renders the items for the Items column: comma-joined on one line
// for personal receipts, one line per item with its payers for shared ones.
func (r *Receipt) ItemList() string {
	parts := make([]string, 0, len(r.items))
	for _, it := range r.items {
		entry := fmt.Sprintf("%s (%s)", it.Name, it.Cost)
		if r.Type == Shared {
			entry += " - paid by " + it.Owners.String()
		}
		parts = append(parts, entry)
	}
	if r.Type == Shared {
		return strings.Join(parts, "\n")
	}
	return strings.Join(parts, ", ")
}

// Row builds the spreadsheet record for this receipt.
func (r *Receipt) Row() Row {
	return Row{
		Date:  r.Date.String(),
		Store: r.Store,
		Total: r.TotalCost().Dollars(),
		Items: r.ItemList(),
		Type:  string(r.Type),
		Notes: r.Notes,
	}
}

func (r *Receipt) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n************** %s Receipt ****************\n", r.Store)
	fmt.Fprintf(&b, "Date: %s\n", r.Date)
	b.WriteString("Items bought:\n")
	for _, it := range r.items {
		fmt.Fprintf(&b, "- %s: %s (paid by %s)\n", it.Name, it.Cost.Dollars(), it.Owners)
	}
	fmt.Fprintf(&b, "\nTotal cost: %s\n", r.TotalCost().Dollars())
	fmt.Fprintf(&b, "Notes: %s", r.Notes)
	b.WriteString("\n**********************************************\n")
	return b.String()
}
