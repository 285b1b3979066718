package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/events"
	"github.com/alfredjeanlab/eugenio/internal/model"
	"github.com/alfredjeanlab/eugenio/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

func TestPrintItemsTable(t *testing.T) {
	var buf bytes.Buffer
	printItemsTable(&buf, []*model.Item{
		{ID: "it-1", OwnerID: 42, Name: "milk", CreatedAt: time.Now()},
		{ID: "it-2", OwnerID: 42, Name: "eggs", Checked: true, CreatedAt: time.Now()},
	})
	out := buf.String()
	for _, want := range []string{"USER", "⬜ milk", "✅ eggs", "it-2", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintItemsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	printItemsTable(&buf, nil)
	if strings.TrimSpace(buf.String()) != "No items." {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintItemsJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := printItemsJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	var got []any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty array", got)
	}
}

func TestParseOwner(t *testing.T) {
	if id, err := parseOwner("12345"); err != nil || id != 12345 {
		t.Errorf("parseOwner = %d, %v", id, err)
	}
	if _, err := parseOwner("bob"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestPrintEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	yes := true
	for _, tc := range []struct {
		ev   events.Event
		want string
	}{
		{events.Event{Topic: events.TopicItemAdded, OwnerID: 7, Name: "milk", At: at}, `7 added "milk"`},
		{events.Event{Topic: events.TopicItemChecked, OwnerID: 7, Name: "milk", Checked: &yes, At: at}, `7 checked "milk"`},
		{events.Event{Topic: events.TopicItemChecked, OwnerID: 7, Name: "milk", At: at}, `7 unchecked "milk"`},
		{events.Event{Topic: events.TopicListCleared, OwnerID: 7, At: at}, "7 cleared the list"},
		{events.Event{Topic: events.TopicModeEntered, OwnerID: 7, At: at}, "7 started a list"},
		{events.Event{Topic: events.TopicModeExited, OwnerID: 7, At: at}, "7 finished a list"},
		{events.Event{Topic: "eugenio.other", OwnerID: 7, At: at}, "7 eugenio.other"},
	} {
		var buf bytes.Buffer
		printEvent(&buf, tc.ev)
		if got := buf.String(); got != "03:04:05 "+tc.want+"\n" {
			t.Errorf("printEvent(%s) = %q", tc.ev.Topic, got)
		}
	}
}
