package islands

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestRenderContextOrder(t *testing.T) {
	rc := NewRenderContext()
	for _, m := range []string{"b", "a", "", "b", "c", "a"} {
		rc.AddModule(m)
	}
	got := fmt.Sprint(rc.Modules())
	if got != "[b a c]" {
		t.Errorf("Modules() = %s, want [b a c]", got)
	}
}

func TestUseModule(t *testing.T) {
	// Outside of a render this is a no-op.
	UseModule(context.Background(), "x")

	rc := NewRenderContext()
	ctx := WithRenderContext(context.Background(), rc)
	if RenderContextFrom(ctx) != rc {
		t.Fatal("RenderContextFrom() did not return the stored context")
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UseModule(ctx, fmt.Sprintf("m%d", i%5))
		}()
	}
	wg.Wait()
	if n := len(rc.Modules()); n != 5 {
		t.Errorf("len(Modules()) = %d, want 5", n)
	}
}

func TestUnionModules(t *testing.T) {
	got := unionModules([]string{"a", "b"}, nil, []string{"b", "c"}, []string{"a"})
	if fmt.Sprint(got) != "[a b c]" {
		t.Errorf("unionModules() = %v", got)
	}
}
