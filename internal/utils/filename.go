package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TimestampFormat gives record ids second-level resolution. Two requests
// processed within the same second share an id; last write wins.
const TimestampFormat = "20060102_150405"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// TimestampID returns the record id for a request processed at t.
func TimestampID(t time.Time) string {
	return t.Format(TimestampFormat)
}

// SanitizeFilename strips any path component and replaces characters that are
// unsafe in a stored filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// AllowedExtension reports whether name carries one of the accepted image
// extensions.
func AllowedExtension(name string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff":
		return true
	}
	return false
}
