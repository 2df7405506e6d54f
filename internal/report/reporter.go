package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
)

// Format specifies the output format for backup reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat parses an output format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unknown output format %q (valid: text, json)", s)
	}
}

// Reporter formats and writes backup results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Document is the JSON form of a backup result.
type Document struct {
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Kind        string         `json:"kind"`
	Replaced    bool           `json:"replaced,omitempty"`
	DryRun      bool           `json:"dry_run,omitempty"`
	Files       int            `json:"files"`
	Dirs        int            `json:"dirs"`
	Bytes       int64          `json:"bytes"`
	Skipped     []SkippedEntry `json:"skipped,omitempty"`
}

// SkippedEntry is an unsupported entry left out of the backup.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// NewDocument converts a backup result into its JSON form.
func NewDocument(result *backup.Result) Document {
	doc := Document{
		Source:      result.Target.Source,
		Destination: result.Target.Destination,
		Kind:        result.Target.Kind.String(),
		Replaced:    result.Target.Replace,
		DryRun:      result.DryRun,
	}
	if out := result.Outcome; out != nil {
		doc.Files = out.Files
		doc.Dirs = out.Dirs
		doc.Bytes = out.Bytes
		for _, s := range out.Skipped {
			doc.Skipped = append(doc.Skipped, SkippedEntry{Path: s.RelPath, Reason: s.Reason})
		}
	}
	return doc
}

// Report writes the backup result to the output.
func (r *Reporter) Report(result *backup.Result) error {
	if result == nil || result.Target == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		r.reportText(result)
		return nil
	}
}

func (r *Reporter) reportJSON(result *backup.Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(NewDocument(result)), "encoding JSON report")
}

func (r *Reporter) reportText(result *backup.Result) {
	t := result.Target

	if result.DryRun {
		verb := "Would create"
		if t.Replace {
			verb = "Would replace"
		}
		fmt.Fprintf(r.out, "%s %s (%s backup of %s)\n", verb, t.Destination, t.Kind, t.Source)
		return
	}

	out := result.Outcome
	if out == nil {
		return
	}

	fmt.Fprintln(r.out, color.GreenString("✓ Created %s", out.Destination))

	gray := color.New(color.FgHiBlack)
	switch t.Kind {
	case backup.KindFile:
		gray.Fprintf(r.out, "  %s\n", FormatBytes(out.Bytes))
	default:
		gray.Fprintf(r.out, "  %s, %s, %s\n",
			plural(out.Files, "file"), plural(out.Dirs, "directory"), FormatBytes(out.Bytes))
	}

	if len(out.Skipped) == 0 {
		return
	}

	fmt.Fprintln(r.out, color.YellowString("Skipped %s:", plural(len(out.Skipped), "unsupported entry")))
	for _, s := range out.Skipped {
		fmt.Fprintf(r.out, "  • %s %s\n", s.RelPath, gray.Sprintf("(%s)", s.Reason))
	}
}

// FormatBytes renders n using binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return plural(int(n), "byte")
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	switch {
	case strings.HasSuffix(noun, "y"):
		noun = strings.TrimSuffix(noun, "y") + "ies"
	default:
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}
