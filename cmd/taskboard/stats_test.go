package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"taskboard/internal/model"
)

func TestPrintStats(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	at := func(d, h int) *time.Time {
		ts := time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
		return &ts
	}
	tasks := []model.Task{
		{Status: model.StatusDone, DueDate: at(10, 9)},
		{Status: model.StatusPending, DueDate: at(12, 23)},
		{Status: model.StatusDone, DueDate: at(17, 1)},
	}

	var buf bytes.Buffer
	printStats(&buf, "a@b.co", tasks, now)
	out := buf.String()
	for _, want := range []string{"Tugas Selesai: 1", "Belum Selesai: 1", "Minggu Ini", "Minggu +1    1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printStats(&buf, "a@b.co", nil, now)
	if !strings.Contains(buf.String(), "per minggu: 0") {
		t.Fatalf("empty series output:\n%s", buf.String())
	}
}
