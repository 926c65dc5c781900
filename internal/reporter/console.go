package reporter

import (
	"fmt"
	"io"
	"strings"

	"ccview-smoke/internal/catalog"
	"ccview-smoke/internal/types"

	"github.com/fatih/color"
)

const (
	ruleWidth      = 80
	previewKeys    = 5
	previewChars   = 50
	consoleIndent  = "   "
	categoryIndent = "  "
)

// Glyphs are the markers printed in front of console lines
type Glyphs struct {
	Pass string
	Fail string
	Time string
	Size string
	Keys string
	Data string
}

var (
	// UnicodeGlyphs are used when the terminal can render UTF-8
	UnicodeGlyphs = Glyphs{Pass: "✅", Fail: "❌", Time: "⏱️ ", Size: "📦", Keys: "🔑", Data: "📄"}
	// ASCIIGlyphs are the plain fallback
	ASCIIGlyphs = Glyphs{Pass: "OK", Fail: "FAIL", Time: "-", Size: "-", Keys: "-", Data: "-"}
)

// SupportsUTF8 guesses from the locale whether output can be UTF-8.
// getenv is usually os.Getenv and goos runtime.GOOS.
func SupportsUTF8(getenv func(string) string, goos string) bool {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		value := getenv(key)
		if value == "" {
			continue
		}
		lower := strings.ToLower(value)
		return strings.Contains(lower, "utf-8") || strings.Contains(lower, "utf8")
	}
	return goos != "windows"
}

// Console prints the human-readable report
type Console struct {
	w      io.Writer
	glyphs Glyphs
	pass   func(a ...interface{}) string
	fail   func(a ...interface{}) string
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer, glyphs Glyphs) *Console {
	return &Console{
		w:      w,
		glyphs: glyphs,
		pass:   color.New(color.FgGreen).SprintFunc(),
		fail:   color.New(color.FgRed).SprintFunc(),
	}
}

func (c *Console) rule() {
	fmt.Fprintln(c.w, strings.Repeat("=", ruleWidth))
}

// Header prints the run banner
func (c *Console) Header(total int, dates catalog.DateRange) {
	c.rule()
	fmt.Fprintln(c.w, "CCView API Endpoint Testing")
	c.rule()
	fmt.Fprintf(c.w, "Testing %d endpoints...\n", total)
	fmt.Fprintf(c.w, "Date Range: %s to %s\n", dates.Start, dates.End)
	c.rule()
	fmt.Fprintln(c.w)
}

// OnRecord prints the block for one record as it arrives
func (c *Console) OnRecord(index, total int, record types.TestRecord) {
	fmt.Fprintf(c.w, "[%d/%d] Testing: %s (%s)\n", index, total, record.Name, record.Category)

	if !record.Success {
		msg := record.Error
		if msg == "" {
			msg = "Unknown error"
		}
		fmt.Fprintf(c.w, "%s%s Failed: %s\n", consoleIndent, c.fail(c.glyphs.Fail), msg)
		fmt.Fprintln(c.w)
		return
	}

	fmt.Fprintf(c.w, "%s%s Status: %d\n", consoleIndent, c.pass(c.glyphs.Pass), record.Status)
	fmt.Fprintf(c.w, "%s%s Response Time: %dms\n", consoleIndent, c.glyphs.Time, record.ResponseTimeMs)
	if record.SizeBytes != nil {
		fmt.Fprintf(c.w, "%s%s Size: %d bytes\n", consoleIndent, c.glyphs.Size, *record.SizeBytes)
	}
	c.preview(record.Data)
	fmt.Fprintln(c.w)
}

func (c *Console) preview(body *types.Body) {
	if body == nil {
		return
	}

	switch body.Kind {
	case types.BodyStructured:
		if keys, ok := body.Keys(); ok {
			if len(keys) > previewKeys {
				keys = keys[:previewKeys]
			}
			fmt.Fprintf(c.w, "%s%s Keys: %s...\n", consoleIndent, c.glyphs.Keys, strings.Join(keys, ", "))
		} else if n, ok := body.Len(); ok {
			fmt.Fprintf(c.w, "%s%s Items: %d\n", consoleIndent, c.glyphs.Keys, n)
		}
	case types.BodyText:
		text := []rune(body.Text)
		if len(text) > previewChars {
			text = text[:previewChars]
		}
		fmt.Fprintf(c.w, "%s%s Data: %s...\n", consoleIndent, c.glyphs.Data, string(text))
	}
}

// Summary prints totals and the per-category breakdown
func (c *Console) Summary(summary Summary) {
	c.rule()
	fmt.Fprintln(c.w, "Test Summary")
	c.rule()
	fmt.Fprintf(c.w, "Total Tests: %d\n", summary.Total)
	fmt.Fprintf(c.w, "%s Passed: %d\n", c.pass(c.glyphs.Pass), summary.Passed)
	fmt.Fprintf(c.w, "%s Failed: %d\n", c.fail(c.glyphs.Fail), summary.Failed)
	fmt.Fprintf(c.w, "Success Rate: %.1f%%\n", summary.SuccessRate())
	fmt.Fprintln(c.w)

	fmt.Fprintln(c.w, "Results by Category:")
	for _, name := range summary.SortedCategories() {
		count := summary.Categories[name]
		fmt.Fprintf(c.w, "%s%s: %d/%d passed\n", categoryIndent, name, count.Passed, count.Total())
	}
}

// Render prints every record followed by the summary
func (c *Console) Render(records []types.TestRecord, summary Summary) {
	for i, record := range records {
		c.OnRecord(i+1, len(records), record)
	}
	c.Summary(summary)
}

// Saved reports where the artifact was written
func (c *Console) Saved(path string) {
	fmt.Fprintln(c.w)
	fmt.Fprintf(c.w, "%s Detailed results saved to: %s\n", c.pass(c.glyphs.Pass), path)
}
