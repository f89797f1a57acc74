package history

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/config"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/models"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
)

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != TimeRange24Hours {
		t.Errorf("default range = %v, want 24 hours", m.timeRange)
	}
}

func TestTimeRange_Cycle(t *testing.T) {
	r := TimeRange24Hours
	if r.Hours() != 24 {
		t.Errorf("Hours() = %d, want 24", r.Hours())
	}

	r = r.Next()
	if r != TimeRange7Days || r.Hours() != 168 {
		t.Errorf("Next() = %v (%d h), want 7 days", r, r.Hours())
	}

	r = r.Next()
	if r != TimeRange30Days || r.Hours() != 720 {
		t.Errorf("Next() = %v (%d h), want 30 days", r, r.Hours())
	}

	r = r.Next()
	if r != TimeRange24Hours {
		t.Errorf("Next() should wrap back to 24 hours, got %v", r)
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View_Empty(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(80, 24)

	view := m.View()
	if !strings.Contains(view, "No quota samples") {
		t.Error("empty view should explain that no samples exist")
	}
}

func TestModel_View_Error(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(80, 24)

	m.Update(historyErrorMsg{err: "No accounts configured"})
	view := m.View()
	if !strings.Contains(view, "No accounts configured") {
		t.Error("error view should show the error message")
	}
}

func TestModel_WithData(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		StorageRoot:  filepath.Join(tmpDir, "accounts"),
		DatabasePath: filepath.Join(tmpDir, "history.db"),
	}
	mgr, err := services.NewManager(cfg)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer func() { _ = mgr.Close() }()

	included := int64(300)
	now := time.Now().UTC()
	samples := []models.QuotaSample{
		{AccountID: "copilot_abc", Username: "octocat", UsedRequests: 10, IncludedRequests: &included, RecordedAt: now.Add(-2 * time.Hour)},
		{AccountID: "copilot_abc", Username: "octocat", UsedRequests: 45, IncludedRequests: &included, RecordedAt: now.Add(-time.Hour)},
	}
	for i := range samples {
		if err := mgr.Database().InsertQuotaSample(&samples[i]); err != nil {
			t.Fatalf("InsertQuotaSample() failed: %v", err)
		}
	}

	state := app.NewState()
	m := New(state, mgr)
	m.SetSize(100, 50)

	loaded, err := mgr.AccountHistory("copilot_abc", 24)
	if err != nil {
		t.Fatalf("AccountHistory() failed: %v", err)
	}
	m.Update(historyLoadedMsg{accountID: "copilot_abc", username: "octocat", samples: loaded})

	view := m.View()
	if !strings.Contains(view, "octocat") {
		t.Error("view should show the account name")
	}
	if !strings.Contains(view, "Premium Requests Used") {
		t.Error("view should render the usage chart card")
	}
	if !strings.Contains(view, "35 requests") {
		t.Error("summary should show the consumed delta (45-10)")
	}
}

func TestModel_ToggleRangeReloads(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.timeRange != TimeRange7Days {
		t.Errorf("range = %v, want 7 days after toggle", m.timeRange)
	}
	if cmd == nil {
		t.Error("toggling the range should reload history")
	}
	if !m.loading {
		t.Error("toggle should flag loading")
	}
}

func TestModel_Help(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
