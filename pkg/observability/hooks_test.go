package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopProjectHooks{}
	p.OnGenerateStart(ctx, "python", 12)
	p.OnGenerateComplete(ctx, "python", 240, time.Millisecond, nil)
	p.OnSnapshotStart(ctx, "save")
	p.OnSnapshotComplete(ctx, "save", 12, time.Millisecond, errors.New("disk full"))
	p.OnDrop(ctx, "attached", "container")

	s := NoopStoreHooks{}
	s.OnStoreRead(ctx, "file", 0, false, time.Millisecond, nil)
	s.OnStoreWrite(ctx, "redis", 1024, time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Project().(NoopProjectHooks); !ok {
		t.Error("Project() should return NoopProjectHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customProject := &testProjectHooks{}
	SetProjectHooks(customProject)
	if Project() != customProject {
		t.Error("SetProjectHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	Reset()
	if _, ok := Project().(NoopProjectHooks); !ok {
		t.Error("Reset() should restore NoopProjectHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testProjectHooks{}
	SetProjectHooks(custom)
	SetProjectHooks(nil)

	if Project() != custom {
		t.Error("SetProjectHooks(nil) should be ignored")
	}

	Reset()
}

type testProjectHooks struct{ NoopProjectHooks }
type testStoreHooks struct{ NoopStoreHooks }
