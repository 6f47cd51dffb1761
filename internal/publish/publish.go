package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"planner-cli/internal/model"
)

// AgendaFileName is the index page WriteAgenda writes at the root of the target dir.
const AgendaFileName = "agenda.md"

type WriteOptions struct {
	Title     string
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteAgenda writes <toDir>/agenda.md plus one page per record under <toDir>/records.
// It stops on the first error.
func WriteAgenda(events, tasks []model.Record, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	recordsDir := filepath.Join(toDir, "records")
	if err := os.MkdirAll(recordsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, AgendaFileName)
	if err := writeFile(indexPath, []byte(RenderAgendaMarkdown(opt.Title, events, tasks)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, list := range [][]model.Record{events, tasks} {
		for _, r := range list {
			if strings.TrimSpace(string(r.ID)) == "" {
				continue
			}
			p := filepath.Join(recordsDir, fileName(r.ID)+".md")
			if err := writeFile(p, []byte(RenderRecordMarkdown(r)), opt.Overwrite); err != nil {
				return WriteResult{}, err
			}
			written = append(written, p)
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
