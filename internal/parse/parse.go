// Package parse turns raw sign-off report text into structured violation
// records. Two input shapes are supported: single-file constraint reports
// whose section headers carry severity and rule identity (ReportParser),
// and the legacy two-file mode where rule identity comes from a separate
// template file (TemplateManager + instance counter lines).
package parse

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/crimson-sun/sieve/internal/model"
)

// File is the unified entry point. With an empty templatePath the log is
// parsed as a single-file constraint report; otherwise the legacy
// two-file mode is used.
func File(logPath, templatePath string) ([]model.ParsedRecord, error) {
	if templatePath == "" {
		return NewReportParser().ParseFile(logPath)
	}

	tm, err := NewTemplateManager(templatePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("parse: open log: %w", err)
	}
	defer f.Close()

	var records []model.ParsedRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "=") ||
			strings.HasPrefix(line, "Rule") || strings.HasPrefix(line, "Severity") {
			continue
		}
		if rec := parseCounterLine(line, tm); rec != nil {
			records = append(records, *rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse: read log: %w", err)
	}
	return records, nil
}

// parseCounterLine handles one legacy instance line: "<n> of <m>" marks
// it, the first four whitespace fields are counter bookkeeping, and the
// rest is the message. Severity is unavailable in this mode.
func parseCounterLine(line string, tm *TemplateManager) *model.ParsedRecord {
	if !counterPattern.MatchString(line) {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) <= 4 {
		return nil
	}
	message := strings.Join(fields[4:], " ")

	template := MaskTemplate(message)
	return &model.ParsedRecord{
		RuleID:    tm.RuleID(template),
		Variables: ExtractVariables(message),
		Template:  template,
		RawText:   message,
		Severity:  "unknown",
	}
}
