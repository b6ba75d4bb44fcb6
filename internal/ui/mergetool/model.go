// Package mergetool is the interactive multi-file merge dialog. It lists the
// conflicted files of one merge request, previews the selected file with its
// conflict markers highlighted, and resolves files one at a time by taking a
// side, by editing, or through git mergetool.
package mergetool

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/zhubert/mend/internal/conflict"
	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/ui"
)

// Options tune the dialog.
type Options struct {
	// Editor is the command line used to edit a file, e.g. "code --wait".
	Editor string
	// UseGitMergetool enables the "m" action.
	UseGitMergetool bool
	// PreviewStyle is a chroma style name.
	PreviewStyle string
	// Copy puts text on the clipboard. Nil disables the copy action.
	Copy func(string) error
}

// Resolution values recorded for files handled in the dialog.
const (
	ResolvedYours  = "accepted yours"
	ResolvedTheirs = "accepted theirs"
	ResolvedMerged = "merged"
)

type fileState struct {
	file       conflict.UnmergedFile
	resolution string // empty while unresolved
}

type contentMsg struct {
	path    string
	content string
	err     error
}

type actionMsg struct {
	path       string
	resolution string
	err        error
}

type externalMsg struct {
	path string
	tool string
	err  error
}

type recheckMsg struct {
	path     string
	unmerged bool
	err      error
}

type statusMsg struct {
	text string
	err  error
}

// Model is the bubbletea model of the merge dialog.
type Model struct {
	ctx      context.Context
	req      conflict.MergeRequest
	resolver Resolver
	opts     Options
	keys     KeyMap
	help     help.Model
	preview  viewport.Model
	log      *slog.Logger

	files   []fileState
	cursor  int
	content string // raw text of the previewed file
	shown   string // path the preview currently shows

	width, height int
	status        string
	statusErr     bool
	busy          bool
}

// NewModel builds the dialog for req.
func NewModel(ctx context.Context, req conflict.MergeRequest, r Resolver, opts Options) Model {
	if opts.PreviewStyle == "" {
		opts.PreviewStyle = "monokai"
	}
	km := DefaultKeyMap()
	km.Merge.SetEnabled(opts.UseGitMergetool)
	km.Copy.SetEnabled(opts.Copy != nil)
	km.Yours.SetHelp("o", "accept "+req.Customizer.Yours())
	km.Theirs.SetHelp("t", "accept "+req.Customizer.Theirs())

	files := make([]fileState, len(req.Files))
	for i, f := range req.Files {
		files[i] = fileState{file: f}
	}

	m := Model{
		ctx:      ctx,
		req:      req,
		resolver: r,
		opts:     opts,
		keys:     km,
		help:     newHelp(),
		preview:  viewport.New(),
		log:      logger.ComponentLogger("MergeTool"),
		files:    files,
	}
	m.resize(ui.DefaultWidth, ui.DefaultHeight)
	return m
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = ui.FooterKeyStyle
	h.Styles.ShortDesc = ui.FooterDescStyle
	h.Styles.FullKey = ui.FooterKeyStyle
	h.Styles.FullDesc = ui.FooterDescStyle
	return h
}

func (m Model) Init() tea.Cmd {
	return m.loadSelected()
}

// Remaining is the number of files not yet resolved in the dialog.
func (m Model) Remaining() int {
	n := 0
	for _, f := range m.files {
		if f.resolution == "" {
			n++
		}
	}
	return n
}

// Resolutions maps the path of every file resolved in the dialog to how it
// was resolved.
func (m Model) Resolutions() map[string]string {
	out := make(map[string]string)
	for _, f := range m.files {
		if f.resolution != "" {
			out[f.file.Path] = f.resolution
		}
	}
	return out
}

func (m Model) selected() (fileState, bool) {
	if m.cursor < 0 || m.cursor >= len(m.files) {
		return fileState{}, false
	}
	return m.files[m.cursor], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	listWidth := max(width/ui.FileListWidthRatio, ui.MinFileListWidth)
	bodyHeight := max(height-ui.HeaderHeight-ui.FooterHeight, ui.BorderSize+1)
	m.preview.SetWidth(max(width-listWidth-ui.BorderSize, 1))
	m.preview.SetHeight(bodyHeight - ui.BorderSize - 1) // title line
	m.help.SetWidth(width)
	if m.shown != "" {
		m.refreshPreview()
	}
}

func (m *Model) refreshPreview() {
	name := filepath.Base(m.shown)
	m.preview.SetContent(renderPreview(m.content, name, m.opts.PreviewStyle, m.preview.Width()))
}

// loadSelected reads the selected file off the UI loop.
func (m Model) loadSelected() tea.Cmd {
	sel, ok := m.selected()
	if !ok {
		return nil
	}
	ctx, r, f := m.ctx, m.resolver, sel.file
	return func() tea.Msg {
		content, err := r.Content(ctx, f)
		return contentMsg{path: f.Path, content: content, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case contentMsg:
		sel, ok := m.selected()
		if !ok || sel.file.Path != msg.path {
			return m, nil
		}
		m.shown = msg.path
		if msg.err != nil {
			m.content = ""
			m.preview.SetContent(ui.StatusErrorStyle.Render(merrors.Cause(msg.err)))
			return m, nil
		}
		m.content = msg.content
		m.refreshPreview()
		m.preview.GotoTop()
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Warn("action failed", "path", msg.path, "error", msg.err)
			m.setStatus(merrors.Cause(msg.err), true)
			return m, nil
		}
		return m.markResolved(msg.path, msg.resolution)

	case externalMsg:
		if msg.err != nil {
			m.log.Warn("external tool failed", "tool", msg.tool, "path", msg.path, "error", msg.err)
			m.setStatus(fmt.Sprintf("%s: %v", msg.tool, msg.err), true)
		}
		m.busy = true
		return m, m.recheck(msg.path)

	case recheckMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(merrors.Cause(msg.err), true)
			return m, m.loadSelected()
		}
		if !msg.unmerged {
			return m.markResolved(msg.path, ResolvedMerged)
		}
		if !m.statusErr {
			m.setStatus(m.pathLabel(msg.path)+" is still unmerged; press r when done", false)
		}
		return m, m.loadSelected()

	case statusMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(msg.text, false)
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		return m, tea.Quit
	}
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.preview.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.preview.HalfPageUp()
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m.moveTo(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		return m.moveTo(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		return m.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		return m.moveTo(len(m.files) - 1)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyPath()
	}

	sel, ok := m.selected()
	if !ok {
		return m, nil
	}
	if sel.resolution != "" {
		m.setStatus(m.pathLabel(sel.file.Path)+" is already resolved", false)
		return m, nil
	}

	ctx, r, f := m.ctx, m.resolver, sel.file
	switch {
	case key.Matches(msg, m.keys.Yours):
		m.busy = true
		return m, func() tea.Msg {
			return actionMsg{path: f.Path, resolution: ResolvedYours, err: r.AcceptYours(ctx, f)}
		}
	case key.Matches(msg, m.keys.Theirs):
		m.busy = true
		return m, func() tea.Msg {
			return actionMsg{path: f.Path, resolution: ResolvedTheirs, err: r.AcceptTheirs(ctx, f)}
		}
	case key.Matches(msg, m.keys.Resolve), key.Matches(msg, m.keys.Force):
		force := key.Matches(msg, m.keys.Force)
		m.busy = true
		return m, func() tea.Msg {
			return actionMsg{path: f.Path, resolution: ResolvedMerged, err: r.MarkResolved(ctx, f, force)}
		}
	case key.Matches(msg, m.keys.Edit):
		if !f.Exists {
			m.setStatus("file was deleted on one side; accept yours or theirs", true)
			return m, nil
		}
		return m, m.runExternal("editor", editorCommand(m.opts.Editor, f.Path))
	case key.Matches(msg, m.keys.Merge):
		c := exec.Command("git", "mergetool", "--no-prompt", "--", f.RelPath)
		c.Dir = string(f.Root)
		return m, m.runExternal("git mergetool", c)
	}
	return m, nil
}

func (m Model) moveTo(i int) (tea.Model, tea.Cmd) {
	if len(m.files) == 0 {
		return m, nil
	}
	i = min(max(i, 0), len(m.files)-1)
	if i == m.cursor {
		return m, nil
	}
	m.cursor = i
	return m, m.loadSelected()
}

// markResolved records the resolution and moves on to the next unresolved
// file. The dialog closes once nothing is left.
func (m Model) markResolved(path, resolution string) (tea.Model, tea.Cmd) {
	for i := range m.files {
		if m.files[i].file.Path == path {
			m.files[i].resolution = resolution
		}
	}
	m.log.Info("file resolved", "path", path, "resolution", resolution, "remaining", m.Remaining())
	m.setStatus(fmt.Sprintf("%s: %s", m.pathLabel(path), resolution), false)

	if m.Remaining() == 0 {
		return m, tea.Quit
	}
	for step := 1; step <= len(m.files); step++ {
		i := (m.cursor + step) % len(m.files)
		if m.files[i].resolution == "" {
			m.cursor = i
			break
		}
	}
	return m, m.loadSelected()
}

func (m Model) recheck(path string) tea.Cmd {
	var f conflict.UnmergedFile
	for _, s := range m.files {
		if s.file.Path == path {
			f = s.file
		}
	}
	ctx, r := m.ctx, m.resolver
	return func() tea.Msg {
		unmerged, err := r.StillUnmerged(ctx, f)
		return recheckMsg{path: path, unmerged: unmerged, err: err}
	}
}

func (m Model) runExternal(tool string, c *exec.Cmd) tea.Cmd {
	sel, _ := m.selected()
	path := sel.file.Path
	m.log.Info("running external tool", "tool", tool, "path", path, "args", c.Args)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return externalMsg{path: path, tool: tool, err: err}
	})
}

func (m Model) copyPath() tea.Cmd {
	sel, ok := m.selected()
	if !ok || m.opts.Copy == nil {
		return nil
	}
	copyFn, path := m.opts.Copy, sel.file.Path
	return func() tea.Msg {
		if err := copyFn(path); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "copied " + path}
	}
}

// editorCommand splits the configured editor command line and appends path.
func editorCommand(editor, path string) *exec.Cmd {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	args := append(fields[1:len(fields):len(fields)], path)
	return exec.Command(fields[0], args...)
}

// pathLabel shows a path relative to its root.
func (m Model) pathLabel(path string) string {
	for _, s := range m.files {
		if s.file.Path == path {
			return s.file.RelPath
		}
	}
	return path
}

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	listWidth := max(m.width/ui.FileListWidthRatio, ui.MinFileListWidth)
	previewWidth := max(m.width-listWidth, ui.BorderSize+1)
	bodyHeight := max(m.height-ui.HeaderHeight-ui.FooterHeight, ui.BorderSize+1)

	header := lipgloss.JoinVertical(lipgloss.Left,
		ui.HeaderStyle.Width(m.width).Render(m.req.Customizer.DialogTitle()),
		ui.HeaderDescStyle.Width(m.width).Render(firstLine(m.req.Customizer.Description(m.req.Files))),
	)

	list := ui.PanelFocusedStyle.Width(listWidth).Height(bodyHeight).
		Render(m.renderFiles(listWidth-ui.BorderSize, bodyHeight-ui.BorderSize))

	title := "Preview"
	if sel, ok := m.selected(); ok {
		title = fmt.Sprintf("%s  (%s / %s)", sel.file.RelPath,
			m.req.Customizer.Yours(), m.req.Customizer.Theirs())
		if n := CountConflicts(m.content); n > 0 {
			title += fmt.Sprintf("  %d conflict(s)", n)
		}
	}
	title = runewidth.Truncate(title, previewWidth-ui.BorderSize-2, "…")
	preview := ui.PanelStyle.Width(previewWidth).Height(bodyHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, ui.PanelTitleStyle.Render(title), m.preview.View()))

	status := ""
	switch {
	case m.busy:
		status = ui.StatusInfoStyle.Render("working...")
	case m.statusErr:
		status = ui.StatusErrorStyle.Render(m.status)
	case m.status != "":
		status = ui.StatusSuccessStyle.Render(m.status)
	}
	footer := lipgloss.JoinVertical(lipgloss.Left,
		ui.FooterStyle.Render(fmt.Sprintf("%d of %d unresolved  %s", m.Remaining(), len(m.files), status)),
		ui.FooterStyle.Render(m.help.View(m.keys)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		footer,
	)
}

// renderFiles draws the file list, grouped by root when the request spans
// more than one repository. Rows past height scroll with the cursor.
func (m Model) renderFiles(width, height int) string {
	multiRoot := false
	for _, f := range m.files {
		if f.file.Root != m.files[0].file.Root {
			multiRoot = true
			break
		}
	}

	var rows []string
	selectedRow := 0
	var lastRoot conflict.Root
	for i, f := range m.files {
		if multiRoot && f.file.Root != lastRoot {
			lastRoot = f.file.Root
			label := runewidth.Truncate(filepath.Base(string(lastRoot)), max(width-2, 1), "…")
			rows = append(rows, ui.FileRootStyle.Width(width).Render(label))
		}
		mark := "  "
		style := ui.FileItemStyle
		if f.resolution != "" {
			mark = "✓ "
			style = ui.FileResolvedStyle
		}
		if i == m.cursor {
			style = ui.FileSelectedStyle
			selectedRow = len(rows)
		}
		label := runewidth.Truncate(mark+f.file.RelPath, max(width-2, 1), "…")
		rows = append(rows, style.Width(width).Render(label))
	}

	start := 0
	if height > 0 && selectedRow >= height {
		start = selectedRow - height + 1
	}
	end := len(rows)
	if height > 0 {
		end = min(end, start+height)
	}
	return strings.Join(rows[start:end], "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
