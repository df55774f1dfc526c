package host

import (
	"testing"

	"github.com/gogpu/raydemo"
)

func TestOpen_Software(t *testing.T) {
	b, err := Open("software", 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Destroy()
	if b.Name != "software" {
		t.Errorf("Name = %q, want software", b.Name)
	}
	if _, ok := b.Ray.(raydemo.Picker); !ok {
		t.Error("software ray backend should support picking")
	}
	if err := b.Triangle.Configure(8, 8); err != nil {
		t.Errorf("Configure: %v", err)
	}
}

func TestBackends_CloseOnce(t *testing.T) {
	calls := 0
	b := Software(1)
	b.release = func() { calls++ }
	b.Destroy()
	b.Close()
	if calls != 1 {
		t.Errorf("release called %d times, want 1", calls)
	}
}
