package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/athlink/cli/pkg/config"
	"github.com/athlink/cli/pkg/notice"
	"github.com/fatih/color"
	json "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	return ParseFormat(config.GetString("output.format"))
}

// ParseFormat maps a flag value to a format, defaulting to text
func ParseFormat(format string) OutputFormat {
	switch format {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Field is one labelled value of a record, printed in order
type Field struct {
	Key   string
	Value interface{}
}

// Printer writes command output in one format
type Printer struct {
	w      io.Writer
	format OutputFormat
}

// New creates a printer writing to w
func New(w io.Writer, format OutputFormat) *Printer {
	return &Printer{w: w, format: format}
}

// Default prints to the color-aware stdout in the configured format
func Default() *Printer {
	return New(color.Output, GetOutputFormat())
}

func (p *Printer) Format() OutputFormat {
	return p.format
}

// Print outputs data in the configured format with optional title
func (p *Printer) Print(title string, data interface{}) error {
	if p.format == FormatJSON {
		return p.printJSON(data)
	}
	if title != "" {
		fmt.Fprintf(p.w, "%s:\n", title)
	}
	return p.printJSON(data)
}

// PrintList outputs rows as a table, or the raw items as JSON
func (p *Printer) PrintList(title string, items interface{}, headers []string, rows [][]string) error {
	if p.format == FormatJSON {
		return p.printJSON(items)
	}
	if title != "" {
		color.New(color.Bold).Fprintln(p.w, title)
	}
	if len(rows) == 0 {
		fmt.Fprintln(p.w, "(none)")
		return nil
	}
	p.printTable(headers, rows)
	return nil
}

// PrintRecord outputs a single record, or raw as JSON
func (p *Printer) PrintRecord(title string, raw interface{}, fields []Field) error {
	if p.format == FormatJSON {
		return p.printJSON(raw)
	}
	if title != "" {
		color.New(color.Bold).Fprintln(p.w, title)
	}
	if p.format == FormatTable {
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprint(f.Value)})
		}
		p.printTable([]string{"FIELD", "VALUE"}, rows)
		return nil
	}
	bold := color.New(color.Bold)
	for _, f := range fields {
		bold.Fprint(p.w, f.Key+": ")
		fmt.Fprintf(p.w, "%v\n", f.Value)
	}
	return nil
}

// Notice renders a mutation outcome
func (p *Printer) Notice(n notice.Notice) {
	if n.IsZero() {
		return
	}
	if p.format == FormatJSON {
		_ = p.printJSON(n)
		return
	}
	switch n.Level {
	case notice.LevelSuccess:
		p.Success("%s", n.Message)
	case notice.LevelError:
		p.Error("%s", n.Message)
	default:
		p.Info("%s", n.Message)
	}
}

// Success prints a success message
func (p *Printer) Success(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(p.w, msg+"\n", args...)
}

// Error prints an error message
func (p *Printer) Error(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(p.w, "Error: "+msg+"\n", args...)
}

// Info prints an info message
func (p *Printer) Info(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(p.w, msg+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(p.w, "Warning: "+msg+"\n", args...)
}

// Line prints a plain line
func (p *Printer) Line(msg string, args ...interface{}) {
	fmt.Fprintf(p.w, msg+"\n", args...)
}

// Status rewrites the current line, for progress that updates in place
func (p *Printer) Status(msg string, args ...interface{}) {
	fmt.Fprintf(p.w, "\r\033[K"+msg, args...)
}

func (p *Printer) printJSON(data interface{}) error {
	out, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, out)
	return err
}

func (p *Printer) printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data interface{}) (string, error) {
	out, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	out, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
