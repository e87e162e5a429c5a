// Package session drives one interactive run of the expense recorder: the
// main menu and the prompts that turn user input into a recorded receipt.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"expenses/internal/console"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/services"
)

// Prompts and messages shown to the user.
const (
	PromptDate       = "Enter the date of the receipt (MM/DD/YYYY): "
	PromptStore      = "Enter the store name: "
	PromptTax        = "Enter the tax amount (press enter to continue if no tax): "
	PromptTaxRetry   = "The given tax is not a number! Enter the tax amount: "
	PromptNotes      = "Add notes (hit enter to continue): "
	PromptMenuChoice = "Select an option by typing the number: "

	MsgInvalidDate   = "Invalid date format!"
	MsgInvalidOption = "\nInvalid option!"
	MsgReceiptAdded  = "Receipt added!"
	MsgSorted        = "\nSorted!"
	MsgNoReceipts    = "No receipts recorded yet."
)

const itemHelp = "\nEnter your item name and cost (without $ sign) separated by a double slash (//)." +
	"\nAdd a third field with comma-separated names when others paid, e.g. Rent // 1200 // Alice, Bob." +
	"\nType \"undo\" to remove the last item and \"done\" to finish."

const menu = "\n***** Expense Tracker Menu *****\n" +
	"  1. Enter a new receipt\n" +
	"  2. Sort receipts by date\n" +
	"  3. Sort receipts by cost\n" +
	"  4. Print receipts\n" +
	"  5. Print connection information\n" +
	"  Q. Quit the program"

// ErrAborted is returned when input ends before a receipt is complete.
var ErrAborted = errors.New("receipt entry aborted")

// Ledger is what a session needs from the configured backend.
type Ledger interface {
	Record(ctx context.Context, r *core.Receipt) (string, error)
	Sort(ctx context.Context, by string) (core.Table, error)
	Table(ctx context.Context) (core.Table, error)
	Info(ctx context.Context) (core.ConnectionInfo, error)
}

// Session holds everything one interactive run uses. It is created once and
// passed to each operation.
type Session struct {
	ledger   Ledger
	prompter *console.Prompter
	logger   *log.Logger
}

func New(ledger Ledger, prompter *console.Prompter, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Discard()
	}
	return &Session{
		ledger:   ledger,
		prompter: prompter,
		logger:   logger.WithComponent(log.ComponentSession),
	}
}

// Run shows the menu until the user quits or input ends.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.prompter.Println(menu)
		choice, err := s.prompter.ReadLine(PromptMenuChoice)
		if errors.Is(err, io.EOF) {
			s.prompter.Println()
			return nil
		}
		if err != nil {
			return err
		}

		var actionErr error
		switch strings.TrimSpace(choice) {
		case "1":
			_, actionErr = s.AddReceipt(ctx)
		case "2":
			actionErr = s.SortByDate(ctx)
		case "3":
			actionErr = s.SortByCost(ctx)
		case "4":
			actionErr = s.PrintReceipts(ctx)
		case "5":
			actionErr = s.PrintConnectionInfo(ctx)
		case "q", "Q":
			return nil
		default:
			s.prompter.Println(MsgInvalidOption)
			continue
		}

		if errors.Is(actionErr, ErrAborted) {
			s.prompter.Println()
			return nil
		}
		if actionErr != nil {
			s.logger.ErrorContext(ctx, "Menu action failed", "choice", choice, log.FieldError, actionErr)
			s.prompter.Printf("\nError: %v\n", actionErr)
		}
	}
}

// AddReceipt collects a receipt from the user, records it and prints it.
func (s *Session) AddReceipt(ctx context.Context) (*core.Receipt, error) {
	date, err := s.readDate()
	if err != nil {
		return nil, err
	}
	store, err := s.read(PromptStore)
	if err != nil {
		return nil, err
	}

	receipt := core.NewReceipt(date, strings.TrimSpace(store))

	s.prompter.Println(itemHelp)
	if err := console.NewItemConsole(receipt, s.prompter, s.logger).Run(ctx); err != nil {
		return nil, err
	}

	if err := s.readTax(receipt); err != nil {
		return nil, err
	}
	notes, err := s.read(PromptNotes)
	if err != nil {
		return nil, err
	}
	receipt.SetNotes(strings.TrimSpace(notes))

	s.prompter.Println("Adding receipt...")
	ref, err := s.ledger.Record(ctx, receipt)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Receipt stored", log.FieldRowRef, ref, log.FieldItemCount, receipt.Len())

	s.prompter.Println(receipt.String())
	s.prompter.Println(MsgReceiptAdded)
	return receipt, nil
}

func (s *Session) SortByDate(ctx context.Context) error {
	if _, err := s.ledger.Sort(ctx, services.SortByDate); err != nil {
		return err
	}
	s.prompter.Println(MsgSorted)
	return nil
}

func (s *Session) SortByCost(ctx context.Context) error {
	if _, err := s.ledger.Sort(ctx, services.SortByCost); err != nil {
		return err
	}
	s.prompter.Println(MsgSorted)
	return nil
}

// PrintReceipts writes every record as an aligned table.
func (s *Session) PrintReceipts(ctx context.Context) error {
	table, err := s.ledger.Table(ctx)
	if err != nil {
		return err
	}
	s.prompter.Println("\nReceipts: ")
	if len(table.Rows) == 0 {
		s.prompter.Println(MsgNoReceipts)
		return nil
	}
	return WriteTable(s.prompter.Writer(), table)
}

func (s *Session) PrintConnectionInfo(ctx context.Context) error {
	info, err := s.ledger.Info(ctx)
	if err != nil {
		return err
	}
	s.prompter.Printf("\nConnection information:\n"+
		"  Backend: %s\n"+
		"  Spreadsheet title: %s\n"+
		"  Worksheet title: %s\n", info.Backend, info.Spreadsheet, info.Worksheet)
	return nil
}

// WriteTable renders the table with one line per record. Multi-line item
// lists are folded onto one line.
func WriteTable(w io.Writer, table core.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := table.Header
	if len(header) == 0 {
		header = core.DefaultHeader()
	}
	fmt.Fprintln(tw, "#\t"+strings.Join(header, "\t"))
	for i, r := range table.Rows {
		cells := r.Values()
		for j, c := range cells {
			cells[j] = strings.ReplaceAll(c, "\n", "; ")
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (s *Session) readDate() (core.Date, error) {
	for {
		line, err := s.read(PromptDate)
		if err != nil {
			return core.Date{}, err
		}
		date, err := core.ParseDate(line)
		if err == nil {
			return date, nil
		}
		s.logger.Debug("Rejected date", log.FieldDate, line, log.FieldError, err)
		s.prompter.Println(MsgInvalidDate)
	}
}

// readTax always adds a Tax item; a blank answer means zero tax.
func (s *Session) readTax(receipt *core.Receipt) error {
	prompt := PromptTax
	for {
		line, err := s.read(prompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			receipt.AddTax(core.Money{})
			return nil
		}
		tax, err := core.ParseSignedAmount(line)
		if err == nil {
			receipt.AddTax(tax)
			return nil
		}
		prompt = PromptTaxRetry
	}
}

// read returns the next line; end of input aborts the receipt.
func (s *Session) read(prompt string) (string, error) {
	line, err := s.prompter.ReadLine(prompt)
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return line, err
}
