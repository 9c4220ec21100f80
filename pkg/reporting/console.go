package reporting

import (
	"fmt"
	"io"

	"fwdctl/pkg/logging"

	"github.com/charmbracelet/lipgloss"
)

// Level tag colors, matching the TUI palette.
var levelStyles = map[Level]lipgloss.Style{
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// ConsoleReporter renders reports as single lines on the given writer and
// mirrors everything to the debug log.
type ConsoleReporter struct {
	out      io.Writer
	messages map[string]string
	minLevel Level
}

// NewConsoleReporter creates a reporter writing English text to out.
// Debug-level reports are suppressed on the console (they still reach the
// log).
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:      out,
		messages: englishMessages,
		minLevel: LevelInfo,
	}
}

func (r *ConsoleReporter) Report(level Level, key string, args ...interface{}) {
	format, ok := r.messages[key]
	var text string
	if ok {
		text = fmt.Sprintf(format, args...)
	} else {
		// Unknown key: print it raw rather than dropping the report.
		text = fmt.Sprintf("%s %v", key, args)
	}

	switch level {
	case LevelError:
		logging.Error("%s", text)
	case LevelWarn:
		logging.Warn("%s", text)
	case LevelDebug:
		logging.Debug("%s", text)
	default:
		logging.Info("%s", text)
	}

	if level < r.minLevel {
		return
	}
	tag := levelStyles[level].Render(fmt.Sprintf("[%s]", level))
	fmt.Fprintf(r.out, "%s %s\n", tag, text)
}

// LogReporter renders reports into the log only. Used where stdout belongs
// to the TUI.
type LogReporter struct{}

func NewLogReporter() *LogReporter { return &LogReporter{} }

func (r *LogReporter) Report(level Level, key string, args ...interface{}) {
	format, ok := englishMessages[key]
	var text string
	if ok {
		text = fmt.Sprintf(format, args...)
	} else {
		text = fmt.Sprintf("%s %v", key, args)
	}
	switch level {
	case LevelError:
		logging.Error("%s", text)
	case LevelWarn:
		logging.Warn("%s", text)
	case LevelDebug:
		logging.Debug("%s", text)
	default:
		logging.Info("%s", text)
	}
}
