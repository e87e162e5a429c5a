package services

import (
	"context"
	"errors"
	"testing"

	"expenses/internal/core"
)

type fakeJournal struct {
	rows     []core.Row
	err      error
	closeErr error
	closed   bool
}

func (j *fakeJournal) Append(_ context.Context, row core.Row) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	j.rows = append(j.rows, row)
	return "id-" + row.Store, nil
}

func (j *fakeJournal) Close() error {
	j.closed = true
	return j.closeErr
}

type fakePublisher struct {
	published []string
	versions  []int64
	err       error
	closeErr  error
}

func (p *fakePublisher) PublishReceiptSync(_ context.Context, id string, version int64) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	p.versions = append(p.versions, version)
	return nil
}

func (p *fakePublisher) Close() error { return p.closeErr }

func TestReceiptServiceCreateReceipt(t *testing.T) {
	ctx := context.Background()
	row := core.Row{Date: "06/01/2021", Store: "Costco", Total: "$2.50"}

	t.Run("saves and publishes", func(t *testing.T) {
		j, p := &fakeJournal{}, &fakePublisher{}
		id, err := NewReceiptService(j, p, nil).CreateReceipt(ctx, row)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if id != "id-Costco" || len(j.rows) != 1 {
			t.Fatalf("id = %q rows = %d", id, len(j.rows))
		}
		if len(p.published) != 1 || p.published[0] != id || p.versions[0] != 1 {
			t.Fatalf("unexpected publish: %+v", p)
		}
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		j := &fakeJournal{}
		id, err := NewReceiptService(j, &fakePublisher{err: errors.New("broker down")}, nil).CreateReceipt(ctx, row)
		if err != nil || id == "" {
			t.Fatalf("expected saved receipt, got id=%q err=%v", id, err)
		}
	})

	t.Run("no publisher", func(t *testing.T) {
		j := &fakeJournal{}
		if _, err := NewReceiptService(j, nil, nil).CreateReceipt(ctx, row); err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(j.rows) != 1 {
			t.Fatal("receipt not saved")
		}
	})

	t.Run("journal failure", func(t *testing.T) {
		boom := errors.New("disk full")
		p := &fakePublisher{}
		_, err := NewReceiptService(&fakeJournal{err: boom}, p, nil).CreateReceipt(ctx, row)
		if !errors.Is(err, boom) {
			t.Fatalf("expected journal error, got %v", err)
		}
		if len(p.published) != 0 {
			t.Fatal("published a receipt that was not saved")
		}
	})
}

func TestReceiptServiceClose(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		if err := (&ReceiptService{}).Close(); err != nil {
			t.Fatalf("Close with nil components: %v", err)
		}
	})

	t.Run("joins errors", func(t *testing.T) {
		jErr, pErr := errors.New("journal"), errors.New("publisher")
		j := &fakeJournal{closeErr: jErr}
		err := NewReceiptService(j, &fakePublisher{closeErr: pErr}, nil).Close()
		if !errors.Is(err, jErr) || !errors.Is(err, pErr) || !j.closed {
			t.Fatalf("unexpected close error: %v", err)
		}
	})
}
