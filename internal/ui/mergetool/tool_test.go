package mergetool

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/mend/internal/background"
	"github.com/zhubert/mend/internal/conflict"
	"github.com/zhubert/mend/internal/ui"
)

func TestTool_ShowMergeDialogOnDispatcher(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	d := ui.NewDispatcher(background.NewTracker())
	go func() { _ = d.Serve(ctx) }()
	defer d.Close()

	var in, out bytes.Buffer
	in.WriteString("q")
	var gotReverse bool
	tool := NewToolWithResolver(d, func(reverse bool) Resolver {
		gotReverse = reverse
		return &fakeResolver{}
	}, Options{}, tea.WithInput(&in), tea.WithOutput(&out))

	req := testRequest("a")
	req.Reverse = true
	if err := tool.ShowMergeDialog(ctx, req); err != nil {
		t.Fatalf("ShowMergeDialog: %v", err)
	}
	if !gotReverse {
		t.Error("resolver should be built for the request's orientation")
	}
}

func TestTool_EmptyRequest(t *testing.T) {
	tool := NewToolWithResolver(nil, nil, Options{})
	if err := tool.ShowMergeDialog(context.Background(), conflict.MergeRequest{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTool_DispatcherClosed(t *testing.T) {
	d := ui.NewDispatcher(background.NewTracker())
	d.Close()
	tool := NewToolWithResolver(d, func(bool) Resolver { return &fakeResolver{} }, Options{})
	if err := tool.ShowMergeDialog(context.Background(), testRequest("a")); err == nil {
		t.Error("expected an error from a closed dispatcher")
	}
}
