package parse

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/crimson-sun/sieve/internal/model"
)

// MaskTemplate reduces a message to its structural shape: quoted variable
// spans become '<VAR>' and standalone numbers become <NUM>. The original
// text is never modified; callers keep it separately as raw evidence.
func MaskTemplate(text string) string {
	masked := varPattern.ReplaceAllString(text, "'<VAR>'")
	masked = numPattern.ReplaceAllString(masked, "<NUM>")
	return strings.TrimSpace(masked)
}

// ExtractVariables returns the quoted tokens of a message in order, or
// the [NO_VAR] sentinel when the message has none.
func ExtractVariables(text string) []string {
	matches := varPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{model.NoVar}
	}
	vars := make([]string, len(matches))
	for i, m := range matches {
		vars[i] = m[1]
	}
	return vars
}

// TemplateManager maps masked templates to rule ids, loaded from a rule
// template file in the legacy two-file mode. Templates without a known
// rule get a deterministic hash-derived placeholder so that identical
// unknown shapes still group together.
type TemplateManager struct {
	templates map[string]string // masked template -> rule id
}

// NewTemplateManager loads the given template file. An empty path yields
// an empty manager; a missing file is not an error (every lookup then
// falls back to the hash placeholder).
func NewTemplateManager(path string) (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[string]string)}
	if path == "" {
		return tm, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("template file not found, using hash-derived rule ids", "path", path)
			return tm, nil
		}
		return nil, fmt.Errorf("parse: open template file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, "Rule") || strings.HasPrefix(line, "Severity") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		message := strings.Join(fields[3:], " ")
		tm.templates[MaskTemplate(message)] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse: read template file: %w", err)
	}

	slog.Info("loaded rule templates", "path", path, "count", len(tm.templates))
	return tm, nil
}

// RuleID resolves a masked template to its rule id. Unknown templates get
// a stable "UNKNOWN_<hash>" placeholder derived from the template text.
func (tm *TemplateManager) RuleID(template string) string {
	if id, ok := tm.templates[template]; ok {
		return id
	}
	sum := md5.Sum([]byte(template))
	return "UNKNOWN_" + strings.ToUpper(fmt.Sprintf("%x", sum)[:6])
}
