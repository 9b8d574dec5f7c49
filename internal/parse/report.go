package parse

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/crimson-sun/sieve/internal/model"
)

// Stats counts what the parser saw in one file.
type Stats struct {
	Instances        int
	SeveritySections int
	ParentRules      int
	Skipped          int
}

// ReportParser walks a single-file constraint report line by line,
// tracking the current severity section and parent rule id so that
// instance lines inherit them. One parser handles one sequential pass;
// it is not safe for concurrent use.
type ReportParser struct {
	severity string
	ruleID   string
	stats    Stats
}

// NewReportParser returns a parser with no section context yet: records
// emitted before any header carry severity "unknown" and rule "UNKNOWN".
func NewReportParser() *ReportParser {
	return &ReportParser{severity: "unknown", ruleID: "UNKNOWN"}
}

// Stats returns the line counts of the most recent parse.
func (p *ReportParser) Stats() Stats {
	return p.stats
}

// ParseFile parses one report file. Invalid UTF-8 is tolerated; lines are
// processed as raw bytes.
func (p *ReportParser) ParseFile(path string) ([]model.ParsedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse: open report: %w", err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return nil, err
	}

	slog.Info("parsed report",
		"path", path,
		"instances", p.stats.Instances,
		"severity_sections", p.stats.SeveritySections,
		"parent_rules", p.stats.ParentRules,
		"skipped", p.stats.Skipped,
	)
	return records, nil
}

// Parse reads a report from r, resetting any previous section context.
func (p *ReportParser) Parse(r io.Reader) ([]model.ParsedRecord, error) {
	p.severity = "unknown"
	p.ruleID = "UNKNOWN"
	p.stats = Stats{}

	var records []model.ParsedRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if rec := p.processLine(scanner.Text()); rec != nil {
			records = append(records, *rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse: read report: %w", err)
	}
	return records, nil
}

// processLine applies the transition rules in order; the first match
// wins. It returns a record only for instance lines.
func (p *ReportParser) processLine(line string) *model.ParsedRecord {
	stripped := strings.TrimSpace(line)

	// Blank and ruler lines carry no state.
	if stripped == "" || separatorPattern.MatchString(line) {
		p.stats.Skipped++
		return nil
	}

	// A new severity section also invalidates the parent rule: the next
	// instances belong to whatever rule line follows, not the previous
	// section's.
	if m := severityPattern.FindStringSubmatch(line); m != nil {
		p.severity = strings.ToLower(m[1])
		p.ruleID = "UNKNOWN"
		p.stats.SeveritySections++
		return nil
	}

	if m := rulePattern.FindStringSubmatch(line); m != nil {
		p.ruleID = m[1]
		p.stats.ParentRules++
		return nil
	}

	if m := instancePattern.FindStringSubmatch(line); m != nil {
		p.stats.Instances++
		message := m[4]
		return &model.ParsedRecord{
			RuleID:    p.ruleID,
			Variables: ExtractVariables(message),
			Template:  MaskTemplate(message),
			RawText:   message,
			Severity:  p.severity,
		}
	}

	slog.Debug("skipped unrecognized report line", "line", truncate(stripped, 80))
	p.stats.Skipped++
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
