package notifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReportFileName is the markdown file name for one run.
func ReportFileName(ticker, start, end string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, strings.ToUpper(ticker))
	return fmt.Sprintf("%s_%s_%s.md", clean, start, end)
}

// WriteReport writes markdown into dir and returns the file path.
func WriteReport(dir, ticker, start, end, markdown string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, ReportFileName(ticker, start, end))
	if err := os.WriteFile(path, []byte(markdown+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
