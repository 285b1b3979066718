package memstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/store"
)

func TestAddItem_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	it, err := s.AddItem(ctx, 1, "milk")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if it.ID == "" || it.CreatedAt.IsZero() {
		t.Errorf("store did not assign id/created_at: %+v", it)
	}

	items, err := s.ListItems(ctx, 1)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "milk" || items[0].Checked {
		t.Errorf("got %+v, want unchecked milk", items[0])
	}
}

func TestAddItem_RejectsBlank(t *testing.T) {
	s := New()
	_, err := s.AddItem(context.Background(), 1, "   ")
	if !errors.Is(err, store.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
	if !errors.Is(err, store.ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestListItems_OrderStableOnTimestampTies(t *testing.T) {
	ctx := context.Background()
	s := New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for _, n := range []string{"a", "b", "c"} {
		if _, err := s.AddItem(ctx, 5, n); err != nil {
			t.Fatalf("AddItem(%s): %v", n, err)
		}
	}
	for round := 0; round < 5; round++ {
		items, _ := s.ListItems(ctx, 5)
		for i, want := range []string{"a", "b", "c"} {
			if items[i].Name != want {
				t.Fatalf("round %d: items[%d] = %q, want %q", round, i, items[i].Name, want)
			}
		}
	}
}

func TestListItems_InterleavedOwners(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for owner := int64(100); owner < 110; owner++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := s.AddItem(ctx, owner, fmt.Sprintf("item-%02d", i)); err != nil {
					t.Errorf("AddItem: %v", err)
				}
			}
		}(owner)
	}
	wg.Wait()

	for owner := int64(100); owner < 110; owner++ {
		items, _ := s.ListItems(ctx, owner)
		if len(items) != 20 {
			t.Fatalf("owner %d: expected 20 items, got %d", owner, len(items))
		}
		for i, it := range items {
			if want := fmt.Sprintf("item-%02d", i); it.Name != want {
				t.Errorf("owner %d: items[%d] = %q, want %q", owner, i, it.Name, want)
			}
		}
	}
}

func TestSetChecked(t *testing.T) {
	ctx := context.Background()
	s := New()
	it, _ := s.AddItem(ctx, 1, "eggs")

	for i := 0; i < 2; i++ {
		if err := s.SetChecked(ctx, it.ID, true); err != nil {
			t.Fatalf("SetChecked: %v", err)
		}
	}
	items, _ := s.ListItems(ctx, 1)
	if !items[0].Checked {
		t.Error("expected checked after SetChecked(true) twice")
	}

	var logs bytes.Buffer
	s.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	if err := s.SetChecked(ctx, "missing", true); err != nil {
		t.Errorf("SetChecked on missing id: %v", err)
	}
	if !strings.Contains(logs.String(), "item=missing") {
		t.Errorf("expected a warning for the missing id, got %q", logs.String())
	}
}

func TestSwapChecked(t *testing.T) {
	ctx := context.Background()
	s := New()
	it, _ := s.AddItem(ctx, 1, "rice")

	ok, err := s.SwapChecked(ctx, it.ID, false, true)
	if err != nil || !ok {
		t.Fatalf("first swap = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.SwapChecked(ctx, it.ID, false, true)
	if err != nil || ok {
		t.Fatalf("stale swap = (%v, %v), want (false, nil)", ok, err)
	}
	ok, _ = s.SwapChecked(ctx, "missing", false, true)
	if ok {
		t.Error("swap on missing id should report false")
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddItem(ctx, 1, "a")
	s.AddItem(ctx, 1, "b")
	s.AddItem(ctx, 2, "other")

	if err := s.ClearAll(ctx, 1); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if items, _ := s.ListItems(ctx, 1); len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
	if items, _ := s.ListItems(ctx, 2); len(items) != 1 {
		t.Errorf("other owner's list touched: %d items", len(items))
	}
	if err := s.ClearAll(ctx, 1); err != nil {
		t.Errorf("ClearAll on empty list: %v", err)
	}
}

func TestListAllItems(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddItem(ctx, 2, "z")
	s.AddItem(ctx, 1, "a")
	s.AddItem(ctx, 2, "y")

	all, err := s.ListAllItems(ctx)
	if err != nil {
		t.Fatalf("ListAllItems: %v", err)
	}
	var got []string
	for _, it := range all {
		got = append(got, fmt.Sprintf("%d:%s", it.OwnerID, it.Name))
	}
	want := []string{"1:a", "2:z", "2:y"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("ListAllItems = %v, want %v", got, want)
	}
}
