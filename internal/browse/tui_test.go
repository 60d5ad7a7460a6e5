package browse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/listingwatch/internal/dedup"
	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/notifier"
)

func testListings() []model.Listing {
	return []model.Listing{
		{ID: "old", Title: "Old Role", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "new", Title: "New Role", CreatedAt: "2024-06-01T00:00:00Z", Description: "Write Go."},
		{ID: "", Title: "No ID"},
	}
}

func sized(t *testing.T, m browseModel) browseModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(browseModel)
}

func press(t *testing.T, m browseModel, key string) browseModel {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(browseModel)
}

func TestNewBrowseModel_SplitsUnseenAndSorts(t *testing.T) {
	m := newBrowseModel(testListings(), dedup.NewSet("old"), notifier.NewFormatter(""))

	if len(m.all) != 3 {
		t.Fatalf("all = %d, want 3", len(m.all))
	}
	if m.all[0].ID != "new" || m.all[1].ID != "old" || m.all[2].Title != "No ID" {
		t.Errorf("order = %q %q %q, want newest first and undated last", m.all[0].ID, m.all[1].ID, m.all[2].Title)
	}
	if len(m.unseen) != 1 || m.unseen[0].ID != "new" {
		t.Errorf("unseen = %+v, want only listing new", m.unseen)
	}
}

func TestBrowse_ListNavigationAndDetail(t *testing.T) {
	m := sized(t, newBrowseModel(testListings(), dedup.NewSet(), notifier.NewFormatter("")))

	if v := m.View(); !strings.Contains(v, "All Listings (3)") {
		t.Errorf("list view missing header:\n%s", v)
	}

	m = press(t, m, "down")
	if m.leftCursor != 1 {
		t.Errorf("leftCursor = %d, want 1", m.leftCursor)
	}
	m = press(t, m, "down")
	m = press(t, m, "down")
	if m.leftCursor != 2 {
		t.Errorf("leftCursor = %d, want clamped at 2", m.leftCursor)
	}

	m.leftCursor = 0
	m = press(t, m, "enter")
	if m.view != viewDetail || m.detail.ID != "new" {
		t.Fatalf("view = %v detail = %q, want detail of new", m.view, m.detail.ID)
	}
	if !strings.Contains(m.renderDetail(), "https://work.mercor.com/jobs/new") {
		t.Error("detail should show the listing URL")
	}

	m = press(t, m, "esc")
	if m.view != viewList {
		t.Error("esc should return to the list view")
	}
}

func TestBrowse_PreviewShowsNotificationText(t *testing.T) {
	format := notifier.NewFormatter("")
	m := sized(t, newBrowseModel(testListings(), dedup.NewSet(), format))
	m = press(t, m, "enter")

	if strings.Contains(m.renderDetail(), "New Job Alert") {
		t.Error("preview should be hidden until toggled")
	}
	m = press(t, m, "p")
	if !m.showPreview || !strings.Contains(m.renderDetail(), "New Job Alert") {
		t.Error("preview should contain the formatted notification")
	}

	m = press(t, m, "r")
	if !m.showDescription || !strings.Contains(m.renderDetail(), "Write Go.") {
		t.Error("description toggle should show the description")
	}
}

func TestBrowse_OpenURL(t *testing.T) {
	m := sized(t, newBrowseModel(testListings(), dedup.NewSet(), notifier.NewFormatter("https://example.com/j/%s")))
	var opened []string
	m.opener = func(url string) { opened = append(opened, url) }

	m = press(t, m, "enter")
	press(t, m, "o")
	if len(opened) != 1 || opened[0] != "https://example.com/j/new" {
		t.Errorf("opened = %v", opened)
	}
}

func TestBrowse_TabSwitchesToUnseenPane(t *testing.T) {
	m := sized(t, newBrowseModel(testListings(), dedup.NewSet("new"), notifier.NewFormatter("")))
	m = press(t, m, "tab")
	if m.activePane != 1 {
		t.Fatalf("activePane = %d, want 1", m.activePane)
	}
	m = press(t, m, "enter")
	if m.detail.ID != "old" {
		t.Errorf("detail = %q, want old (the only unseen listing)", m.detail.ID)
	}
}

func TestBrowse_Quit(t *testing.T) {
	m := sized(t, newBrowseModel(nil, dedup.NewSet(), notifier.NewFormatter("")))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if !strings.Contains(m.View(), "(no listings)") {
		t.Error("empty list should render a placeholder")
	}
}

func TestLoaderModel(t *testing.T) {
	want := []model.Listing{{ID: "a"}}
	m := newLoaderModel("src", time.Second, func(context.Context) ([]model.Listing, error) {
		return want, nil
	})

	msg := m.doFetch()()
	next, cmd := m.Update(msg)
	final := next.(loaderModel)
	if !final.done || len(final.result) != 1 || final.err != nil {
		t.Errorf("loader = %+v", final)
	}
	if cmd == nil {
		t.Error("loader should quit after fetch")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !errors.Is(next.(loaderModel).err, ErrCancelled) {
		t.Error("ctrl+c should cancel")
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("wordWrap = %q", got)
	}
}
