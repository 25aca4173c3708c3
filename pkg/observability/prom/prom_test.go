package prom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()

	c.OnGenerateComplete(ctx, "python", 120, time.Millisecond, nil)
	c.OnGenerateComplete(ctx, "python", 80, time.Millisecond, nil)
	c.OnGenerateComplete(ctx, "c", 0, time.Millisecond, errors.New("bad"))
	c.OnSnapshotComplete(ctx, "save", 7, time.Millisecond, nil)
	c.OnDrop(ctx, "attached", "container")
	c.OnStoreRead(ctx, "file", 0, false, time.Millisecond, nil)
	c.OnStoreWrite(ctx, "file", 512, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "blockstack.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		`blockstack_generate_total{language="python",result="ok"} 2`,
		`blockstack_generate_total{language="c",result="error"} 1`,
		`blockstack_generate_bytes_total{language="python"} 200`,
		`blockstack_snapshot_blocks{op="save"} 7`,
		`blockstack_drops_total{state="attached",target="container"} 1`,
		`blockstack_store_operations_total{backend="file",op="read",result="miss"} 1`,
		`blockstack_store_bytes_total{backend="file",op="write"} 512`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestSnapshotErrorKeepsGauge(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	c.OnSnapshotComplete(ctx, "load", 3, time.Millisecond, nil)
	c.OnSnapshotComplete(ctx, "load", 0, time.Millisecond, errors.New("corrupt"))

	path := filepath.Join(t.TempDir(), "m.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `blockstack_snapshot_blocks{op="load"} 3`) {
		t.Errorf("gauge overwritten by failed operation:\n%s", data)
	}
}
