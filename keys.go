package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RootPrefix is the fixed key prefix every upload and listing lives under.
const RootPrefix = "vpms-vrt-emea-exp"

// Folder is one of the fixed destination folders inside the root prefix.
type Folder int

const (
	FolderContent Folder = iota
	FolderLogo
	FolderStills
	FolderSubtitlesClosed
	FolderSubtitlesOpen
)

// Folders lists every valid destination folder, in menu order.
var Folders = []Folder{
	FolderContent,
	FolderLogo,
	FolderStills,
	FolderSubtitlesClosed,
	FolderSubtitlesOpen,
}

// String returns the folder segment as it appears in object keys.
func (f Folder) String() string {
	switch f {
	case FolderContent:
		return "content"
	case FolderLogo:
		return "logo"
	case FolderStills:
		return "stills"
	case FolderSubtitlesClosed:
		return "subtitles-closed"
	case FolderSubtitlesOpen:
		return "subtitles-open"
	}
	return "unknown"
}

// ResolveFilename picks the final key filename: a non-blank user override
// wins, otherwise the base name of the picked path is used. Names that are
// empty or contain a path separator are rejected so a key can never escape
// its folder.
func ResolveFilename(localPath, override string) (string, error) {
	name := strings.TrimSpace(override)
	if name == "" {
		name = filepath.Base(localPath)
	}

	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("filename is empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("filename %q must not contain path separators", name)
	}

	return name, nil
}

// ObjectKey builds the full key for a filename inside a destination folder.
func ObjectKey(folder Folder, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is empty")
	}
	if strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("filename %q must not contain path separators", filename)
	}
	return fmt.Sprintf("%s/%s/%s", RootPrefix, folder, filename), nil
}
