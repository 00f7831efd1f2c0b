package sync

import (
	"context"
	"testing"

	"github.com/proposalhub/search-sync/internal/index"
)

// fakeMaintainer records which maintenance actions ran.
type fakeMaintainer struct {
	refreshed, rebuilt, cleared, configured int
}

func (f *fakeMaintainer) Refresh(ctx context.Context) index.RefreshResult {
	f.refreshed++
	return index.RefreshResult{Success: true}
}

func (f *fakeMaintainer) Rebuild(ctx context.Context) (index.RebuildResult, error) {
	f.rebuilt++
	return index.RebuildResult{}, nil
}

func (f *fakeMaintainer) Clear(ctx context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeMaintainer) Configure(ctx context.Context) error {
	f.configured++
	return nil
}

func TestHandleMaintenanceDispatch(t *testing.T) {
	m := &fakeMaintainer{}
	handler := HandleMaintenance(m)
	ctx := context.Background()

	for _, action := range []string{"refresh", "rebuild", "clear", "configure"} {
		if err := handler(ctx, nil, []byte(`{"action":"`+action+`"}`)); err != nil {
			t.Fatalf("handler(%s) error: %v", action, err)
		}
	}
	if m.refreshed != 1 || m.rebuilt != 1 || m.cleared != 1 || m.configured != 1 {
		t.Errorf("dispatch counts = %+v", m)
	}
}

func TestHandleMaintenanceCommitsBadMessages(t *testing.T) {
	m := &fakeMaintainer{}
	handler := HandleMaintenance(m)
	ctx := context.Background()

	// Malformed and unknown commands are committed, not redelivered.
	if err := handler(ctx, nil, []byte(`not json`)); err != nil {
		t.Errorf("malformed message returned error: %v", err)
	}
	if err := handler(ctx, nil, []byte(`{"action":"explode"}`)); err != nil {
		t.Errorf("unknown action returned error: %v", err)
	}
	if m.refreshed+m.rebuilt+m.cleared+m.configured != 0 {
		t.Error("bad messages triggered maintenance actions")
	}
}
