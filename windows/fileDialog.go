package windows

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var databaseExtensions = []string{".db", ".sqlite", ".sqlite3"}

func isDatabaseFile(name string) bool {
	return slices.Contains(databaseExtensions, strings.ToLower(filepath.Ext(name)))
}

// DatabaseDialog browses the file system for a SQLite database.
type DatabaseDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func(string)
	fileList    *widget.List
	files       []string
	startDir    string
	currentPath string
	pathLabel   *widget.Label
}

// NewDatabaseDialog creates a dialog starting in dir. callback receives
// the path of the chosen database.
func NewDatabaseDialog(w fyne.Window, dir string, callback func(string)) *DatabaseDialog {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &DatabaseDialog{
		window:      w,
		callback:    callback,
		files:       make([]string, 0),
		startDir:    dir,
		currentPath: dir,
	}
}

func (dd *DatabaseDialog) Show() {
	dd.pathLabel = widget.NewLabel(dd.currentPath)
	dd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	dd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	dd.fileList = widget.NewList(
		func() int {
			return len(dd.files)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FileIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			icon := cont.Objects[0].(*widget.Icon)
			label := cont.Objects[1].(*widget.Label)

			fileName := dd.files[id]
			label.SetText(fileName)
			if isDatabaseFile(fileName) {
				icon.SetResource(theme.StorageIcon())
			} else {
				icon.SetResource(theme.FolderIcon())
			}
		},
	)

	dd.fileList.OnSelected = func(id widget.ListItemID) {
		fullPath := filepath.Join(dd.currentPath, dd.files[id])
		info, err := os.Stat(fullPath)
		if err != nil {
			dialog.ShowError(err, dd.window)
			return
		}
		if info.IsDir() {
			dd.currentPath = fullPath
			dd.loadDirectory()
			dd.fileList.UnselectAll()
			return
		}
		dd.dialog.Hide()
		dd.callback(fullPath)
	}

	startButton := widget.NewButtonWithIcon("Start", theme.HomeIcon(), func() {
		dd.currentPath = dd.startDir
		dd.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		parent := filepath.Dir(dd.currentPath)
		if parent != dd.currentPath {
			dd.currentPath = parent
			dd.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), dd.loadDirectory)

	filterInfo := widget.NewLabel("Showing: " + strings.Join(databaseExtensions, ", ") + " files, and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	navToolbar := container.NewBorder(
		nil, nil,
		container.NewHBox(startButton, upButton, refreshButton),
		nil,
		dd.pathLabel,
	)

	content := container.NewBorder(
		container.NewVBox(
			navToolbar,
			widget.NewSeparator(),
			filterInfo,
		),
		nil, nil, nil,
		dd.fileList,
	)

	dd.dialog = dialog.NewCustom("Open Database", "Close", content, dd.window)
	dd.dialog.Resize(fyne.NewSize(700, 500))
	dd.loadDirectory()
	dd.dialog.Show()
}

func (dd *DatabaseDialog) loadDirectory() {
	files, err := listDatabases(dd.currentPath)
	if err != nil {
		dialog.ShowError(err, dd.window)
		return
	}
	dd.files = files
	dd.pathLabel.SetText(dd.currentPath)
	dd.fileList.Refresh()
}

// listDatabases returns the visible directories of dir followed by its
// database files.
func listDatabases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry.Name())
		}
	}
	for _, entry := range entries {
		if !entry.IsDir() && isDatabaseFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
