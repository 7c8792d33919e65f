package log

import (
	"fmt"
	"time"
)

// StdoutLogger is a basic logger which prints all log statements to standard output, useful for tests and small
// tools.
type StdoutLogger struct{}

var _ Logger = (*StdoutLogger)(nil)

// Log prints the given message to standard output with a timestamp and a level prefix.
func (s StdoutLogger) Log(level Level, format string, args ...any) {
	fmt.Println(time.Now().Format(time.RFC3339Nano) + " " + level.String() + ": " + fmt.Sprintf(format, args...))
}
