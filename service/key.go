package service

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyFunc derives an object key from the upload time and the sanitized file name.
type KeyFunc func(now time.Time, filename string) string

// UniqueKey prefixes the file name with the epoch milliseconds and a random
// token, so two uploads of the same name in the same millisecond still differ.
func UniqueKey(now time.Time, filename string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s_%s", now.UnixMilli(), token, filename)
}

// TimestampKey is the plain "<millis>_<name>" form. Same-millisecond uploads
// of one file name collide.
func TimestampKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), filename)
}

// cleanFilename drops any client supplied directory part.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
