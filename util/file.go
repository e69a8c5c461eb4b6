package util

import (
	"os"
	"path"
	"strings"
)

// WriteToFile writes the content, one entry per line, to name inside dir.
// The directory is created when missing.
func WriteToFile(dir, name string, content ...string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	savePath := path.Join(dir, name)
	return savePath, os.WriteFile(savePath, []byte(strings.Join(content, "\n")+"\n"), 0644)
}
