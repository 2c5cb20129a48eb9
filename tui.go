package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewMode represents the current view mode
type ViewMode int

const (
	ViewMenu ViewMode = iota
	ViewPickFile
	ViewPickFolder
	ViewNameFile
	ViewUploading
	ViewPrefix
	ViewListing
	ViewHelp
)

// menuItems are the main menu entries, in display order.
var menuItems = []string{
	"Upload a file",
	"List bucket contents",
	"Quit",
}

// Messages for async operations
type progressMsg struct {
	transferred int64
	total       int64
}

type uploadDoneMsg struct {
	key  string
	size int64
	err  error
}

type listingLoadedMsg struct {
	prefix  string
	entries []ListingEntry
	err     error
}

// Styles - Minimalistic theme
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1)

	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0066cc")).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbbbbb"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#006600")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("#999999")).
			Padding(1, 2).
			Align(lipgloss.Center)

	centerStyle = lipgloss.NewStyle().
			Align(lipgloss.Center)

	verticalCenterStyle = lipgloss.NewStyle().
				AlignVertical(lipgloss.Center)
)

// Model represents the application state
type Model struct {
	client *S3Client
	config *Config

	viewMode ViewMode
	cursor   int

	filePicker  filepicker.Model
	nameInput   textinput.Model
	prefixInput textinput.Model
	progressBar progress.Model

	pickedPath string
	folder     Folder

	task         UploadTask
	transferred  int64
	progressCh   chan progressMsg
	cancelUpload context.CancelFunc

	listPrefix string
	entries    []ListingEntry
	loading    bool

	err           error
	statusMessage string
	width         int
	height        int
}

// NewModel creates a new TUI model
func NewModel(client *S3Client, config *Config) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "filename"
	nameInput.CharLimit = 255
	nameInput.Width = 48

	prefixInput := textinput.New()
	prefixInput.Placeholder = RootPrefix + "/"
	prefixInput.CharLimit = 512
	prefixInput.Width = 48

	return Model{
		client:      client,
		config:      config,
		viewMode:    ViewMenu,
		nameInput:   nameInput,
		prefixInput: prefixInput,
		progressBar: progress.New(progress.WithDefaultGradient()),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// newFilePicker builds a fresh picker rooted at the working directory. A
// fresh one per flow keeps cancelled selections from leaking state.
func (m Model) newFilePicker() filepicker.Model {
	picker := filepicker.New()
	picker.DirAllowed = false
	picker.FileAllowed = true
	picker.ShowHidden = false
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}
	if m.height > 0 {
		picker.Height = m.height - 8
	}
	return picker
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = msg.Width - 20
		if m.progressBar.Width > 60 {
			m.progressBar.Width = 60
		}
		if m.progressBar.Width < 10 {
			m.progressBar.Width = 10
		}
		m.filePicker.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ViewMenu:
			return m.updateMenu(msg)
		case ViewPickFile:
			return m.updatePickFile(msg)
		case ViewPickFolder:
			return m.updatePickFolder(msg)
		case ViewNameFile:
			return m.updateNameFile(msg)
		case ViewUploading:
			return m.updateUploading(msg)
		case ViewPrefix:
			return m.updatePrefix(msg)
		case ViewListing:
			return m.updateListing(msg)
		case ViewHelp:
			return m.updateHelp(msg)
		}

	case progressMsg:
		// Progress only moves forward even if events arrive out of order.
		if msg.transferred > m.transferred {
			m.transferred = msg.transferred
		}
		return m, waitForProgress(m.progressCh)

	case uploadDoneMsg:
		if m.cancelUpload != nil {
			m.cancelUpload()
			m.cancelUpload = nil
		}
		m.viewMode = ViewMenu
		m.cursor = 0
		if msg.err != nil {
			m.err = msg.err
			m.statusMessage = ""
		} else {
			m.err = nil
			m.statusMessage = fmt.Sprintf("✓ Uploaded '%s' (%s)", msg.key, formatSize(msg.size))
		}
		return m, nil

	case listingLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.viewMode = ViewMenu
			m.cursor = 0
		} else {
			m.err = nil
			m.listPrefix = msg.prefix
			m.entries = msg.entries
			m.viewMode = ViewListing
		}
		return m, nil
	}

	// The file picker reacts to its own internal messages too.
	if m.viewMode == ViewPickFile {
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateMenu handles main menu updates
func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}

	case "enter", "l", "o":
		switch m.cursor {
		case 0:
			m.err = nil
			m.statusMessage = ""
			m.filePicker = m.newFilePicker()
			m.viewMode = ViewPickFile
			return m, m.filePicker.Init()
		case 1:
			m.err = nil
			m.statusMessage = ""
			m.prefixInput.SetValue(RootPrefix + "/")
			m.prefixInput.CursorEnd()
			m.viewMode = ViewPrefix
			return m, m.prefixInput.Focus()
		case 2:
			return m, tea.Quit
		}

	case "?":
		m.viewMode = ViewHelp
	}

	return m, nil
}

// updatePickFile handles file selection updates
func (m Model) updatePickFile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		// Cancelled: back to the menu, nothing touched.
		m.viewMode = ViewMenu
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.pickedPath = path
		m.cursor = 0
		m.viewMode = ViewPickFolder
		return m, nil
	}

	return m, cmd
}

// updatePickFolder handles destination folder selection
func (m Model) updatePickFolder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.viewMode = ViewMenu
		m.cursor = 0

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(Folders)-1 {
			m.cursor++
		}

	case "enter", "l", "o":
		m.folder = Folders[m.cursor]
		m.nameInput.SetValue(filepath.Base(m.pickedPath))
		m.nameInput.CursorEnd()
		m.viewMode = ViewNameFile
		return m, m.nameInput.Focus()
	}

	return m, nil
}

// updateNameFile handles the optional rename step
func (m Model) updateNameFile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.nameInput.Blur()
		m.viewMode = ViewMenu
		m.cursor = 0
		return m, nil

	case "enter":
		filename, err := ResolveFilename(m.pickedPath, m.nameInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		task, err := NewUploadTask(m.pickedPath, m.folder, filename)
		if err != nil {
			m.err = err
			m.nameInput.Blur()
			m.viewMode = ViewMenu
			m.cursor = 0
			return m, nil
		}

		m.err = nil
		m.nameInput.Blur()
		return m.startUpload(task)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// updateUploading handles keys while a transfer is running
func (m Model) updateUploading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.cancelUpload != nil {
			m.cancelUpload()
		}
	}
	return m, nil
}

// updatePrefix handles listing prefix entry
func (m Model) updatePrefix(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.prefixInput.Blur()
		m.viewMode = ViewMenu
		m.cursor = 0
		return m, nil

	case "enter":
		prefix := strings.TrimSpace(m.prefixInput.Value())
		if prefix == "" {
			prefix = RootPrefix + "/"
		}
		m.prefixInput.Blur()
		m.loading = true
		return m, listObjects(m.client, prefix)
	}

	var cmd tea.Cmd
	m.prefixInput, cmd = m.prefixInput.Update(msg)
	return m, cmd
}

// updateListing handles the listing result view
func (m Model) updateListing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "enter", "backspace", "h":
		m.viewMode = ViewMenu
		m.cursor = 0
		m.entries = nil
	}
	return m, nil
}

// updateHelp handles help view updates
func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "?":
		m.viewMode = ViewMenu
	}
	return m, nil
}

// startUpload kicks off the transfer and the progress pump.
func (m Model) startUpload(task UploadTask) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan progressMsg, 16)

	m.task = task
	m.transferred = 0
	m.progressCh = events
	m.cancelUpload = cancel
	m.viewMode = ViewUploading

	return m, tea.Batch(
		uploadFile(ctx, m.client, task, events),
		waitForProgress(events),
	)
}

// uploadFile runs the transfer and forwards progress onto the channel.
// Events are dropped rather than blocking the SDK's read loop.
func uploadFile(ctx context.Context, client *S3Client, task UploadTask, events chan<- progressMsg) tea.Cmd {
	return tea.Cmd(func() tea.Msg {
		err := client.Upload(ctx, task, func(transferred, total int64) {
			select {
			case events <- progressMsg{transferred: transferred, total: total}:
			default:
			}
		})
		close(events)

		return uploadDoneMsg{key: task.Key, size: task.Size, err: err}
	})
}

// waitForProgress delivers the next progress event to the update loop.
func waitForProgress(events <-chan progressMsg) tea.Cmd {
	return tea.Cmd(func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return event
	})
}

// listObjects queries the bucket for the prefix.
func listObjects(client *S3Client, prefix string) tea.Cmd {
	return tea.Cmd(func() tea.Msg {
		entries, err := client.List(context.Background(), prefix)
		return listingLoadedMsg{prefix: prefix, entries: entries, err: err}
	})
}

// View renders the current view
func (m Model) View() string {
	switch m.viewMode {
	case ViewMenu:
		return m.viewMenu()
	case ViewPickFile:
		return m.viewPickFile()
	case ViewPickFolder:
		return m.viewPickFolder()
	case ViewNameFile:
		return m.viewNameFile()
	case ViewUploading:
		return m.viewUploading()
	case ViewPrefix:
		return m.viewPrefix()
	case ViewListing:
		return m.viewListing()
	case ViewHelp:
		return m.viewHelp()
	}
	return ""
}

// center wraps content in the panel style and centers it on screen.
func (m Model) center(content string) string {
	bordered := panelStyle.Render(content)
	if m.width > 0 && m.height > 0 {
		centered := centerStyle.Width(m.width).Render(bordered)
		return verticalCenterStyle.Height(m.height).Render(centered)
	}
	return bordered
}

// viewMenu renders the main menu
func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Bucket: %s | Region: %s", m.config.Bucket, m.config.Region)))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error())))
		s.WriteString("\n\n")
	} else if m.statusMessage != "" {
		s.WriteString(successStyle.Render(m.statusMessage))
		s.WriteString("\n\n")
	}

	if m.loading {
		s.WriteString("Loading...\n")
	} else {
		for i, item := range menuItems {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}

			line := fmt.Sprintf("%s %s", cursor, item)
			if i == m.cursor {
				line = selectedStyle.Render(line)
			}

			s.WriteString(line)
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/k: up • ↓/j: down • enter: select • ?: help • q: quit"))

	return m.center(s.String())
}

// viewPickFile renders the file picker view
func (m Model) viewPickFile() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Pick a file to upload"))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/k: up • ↓/j: down • enter: select • esc: cancel"))

	if m.width > 0 && m.height > 0 {
		return verticalCenterStyle.Height(m.height).Render(s.String())
	}
	return s.String()
}

// viewPickFolder renders the destination folder list
func (m Model) viewPickFolder() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Pick a destination folder"))
	s.WriteString("\n\n")
	s.WriteString(fileStyle.Render(fmt.Sprintf("File: %s", m.pickedPath)))
	s.WriteString("\n\n")

	for i, folder := range Folders {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		line := fmt.Sprintf("%s %s", cursor, folderStyle.Render(folder.String()+"/"))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/k: up • ↓/j: down • enter: select • esc: cancel"))

	return m.center(s.String())
}

// viewNameFile renders the rename step
func (m Model) viewNameFile() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Name the object"))
	s.WriteString("\n\n")
	s.WriteString(fileStyle.Render(fmt.Sprintf("Destination: %s/%s/", RootPrefix, m.folder)))
	s.WriteString("\n\n")
	s.WriteString(m.nameInput.View())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error())))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: upload • esc: cancel"))

	return m.center(s.String())
}

// viewUploading renders the progress bar view
func (m Model) viewUploading() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Uploading to %s", m.task.Key)))
	s.WriteString("\n\n")

	percent := 1.0
	if m.task.Size > 0 {
		percent = float64(m.transferred) / float64(m.task.Size)
	}
	s.WriteString(m.progressBar.ViewAs(percent))
	s.WriteString("\n\n")
	s.WriteString(fileStyle.Render(fmt.Sprintf("%s / %s", formatSize(m.transferred), formatSize(m.task.Size))))
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("esc: cancel upload"))

	return m.center(s.String())
}

// viewPrefix renders the listing prefix prompt
func (m Model) viewPrefix() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("List objects by prefix"))
	s.WriteString("\n\n")
	s.WriteString(m.prefixInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: list • esc: cancel"))

	return m.center(s.String())
}

// viewListing renders the listing results
func (m Model) viewListing() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Objects under '%s'", m.listPrefix)))
	s.WriteString("\n\n")

	if len(m.entries) == 0 {
		s.WriteString("No objects found under this prefix.\n")
	} else {
		for _, entry := range m.entries {
			s.WriteString(fmt.Sprintf("%s (%s)\n", fileStyle.Render(entry.Key), formatSize(entry.Size)))
		}
		s.WriteString("\n")
		s.WriteString(fileStyle.Render(fmt.Sprintf("%d object(s), capped at %d", len(m.entries), MaxListKeys)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc/enter: back • q: quit"))

	return m.center(s.String())
}

// viewHelp renders the help view
func (m Model) viewHelp() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("s3drop - Help"))
	s.WriteString("\n\n")

	help := `Upload flow:
  1. Pick a local file with the file picker
  2. Pick a destination folder:
     content/ logo/ stills/ subtitles-closed/ subtitles-open/
  3. Optionally rename the object
  4. Watch the progress bar; esc cancels the transfer

Every object lands under ` + RootPrefix + `/<folder>/<filename>.
Files of 25 MB and larger are sent as multipart uploads.

Listing:
  Enter a key prefix to list up to 100 matching objects.

Configuration:
  BUCKET_NAME        bucket to upload into (required)
  REGION             AWS region (default us-east-1)
  ACCESS_KEY_ID      static credentials (optional)
  SECRET_ACCESS_KEY  static credentials (optional)

  A .s3drop.cfg ini file in the current or home directory
  is used when the environment is not set.
`

	s.WriteString(help)
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc/?: back • q: quit"))

	content := s.String()
	if m.width > 0 && m.height > 0 {
		centered := centerStyle.Width(m.width).Render(content)
		return verticalCenterStyle.Height(m.height).Render(centered)
	}
	return content
}

// formatSize formats file size in human-readable format
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
