package reporting

// Level classifies a report for the rendering collaborator.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Reporter is the status/text rendering collaborator. The supervisor core
// only emits (level, message key, args) tuples; how they are rendered,
// localized or routed is the implementation's business.
type Reporter interface {
	Report(level Level, key string, args ...interface{})
}

// CaptureReporter records every report; used by tests to assert on what the
// core emitted without caring about rendering.
type CaptureReporter struct {
	Reports []CapturedReport
}

// CapturedReport is one recorded Report call.
type CapturedReport struct {
	Level Level
	Key   string
	Args  []interface{}
}

func (c *CaptureReporter) Report(level Level, key string, args ...interface{}) {
	c.Reports = append(c.Reports, CapturedReport{Level: level, Key: key, Args: args})
}

// Keys returns the message keys in emission order.
func (c *CaptureReporter) Keys() []string {
	keys := make([]string, 0, len(c.Reports))
	for _, r := range c.Reports {
		keys = append(keys, r.Key)
	}
	return keys
}

// Has reports whether a message with the given key was emitted.
func (c *CaptureReporter) Has(key string) bool {
	for _, r := range c.Reports {
		if r.Key == key {
			return true
		}
	}
	return false
}
