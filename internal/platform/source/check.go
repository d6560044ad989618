package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/termbridge/termbridge/internal/domain/terminology"
)

// FileSource names one file-backed source for diagnostics.
type FileSource struct {
	Name string
	Path string
}

// FileChecker reports existence and sheet listing for file-backed
// sources (XLSX workbooks and the ICD-11 CSV).
type FileChecker struct {
	files []FileSource
}

// NewFileChecker creates a checker over the configured source files.
func NewFileChecker(files []FileSource) *FileChecker {
	return &FileChecker{files: files}
}

// CheckSources implements terminology.SourceChecker. Workbooks list
// their sheets; CSV files list their own base name as the single table.
func (c *FileChecker) CheckSources(_ context.Context) []terminology.SourceStatus {
	statuses := make([]terminology.SourceStatus, 0, len(c.files))
	for _, f := range c.files {
		st := terminology.SourceStatus{Source: f.Name, Tables: []string{}}
		if _, err := os.Stat(f.Path); err != nil {
			st.Status = "File not found"
			statuses = append(statuses, st)
			continue
		}
		if strings.EqualFold(filepath.Ext(f.Path), ".xlsx") {
			sheets, err := SheetNames(f.Path)
			if err != nil {
				st.Status = fmt.Sprintf("Error: %v", err)
			} else {
				st.Status = "Connected"
				st.Tables = sheets
			}
		} else {
			st.Status = "Connected"
			st.Tables = []string{strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))}
		}
		statuses = append(statuses, st)
	}
	return statuses
}
