// Command netsimctl's logger is a deliberately small adaptation of
// cmn/nlog/api.go's severity-leveled function shape (Infof/Warningf/Errorf)
// without that package's buffered, rotating-file machinery: a CLI demo
// tool that runs for seconds to minutes and exits has no analog of a
// long-running daemon's log-rotation concern, so this keeps the API the
// teacher's packages call through (nlog.Infof(...)) while writing straight
// to stderr, timestamped, one line per call.
package main

import (
	"fmt"
	"os"
	"time"
)

func logInfof(format string, args ...any)  { logLine("I", format, args...) }
func logWarnf(format string, args ...any)  { logLine("W", format, args...) }
func logErrorf(format string, args ...any) { logLine("E", format, args...) }

func logLine(sev, format string, args ...any) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(os.Stderr, "%s %s netsimctl] %s\n", sev, ts, fmt.Sprintf(format, args...))
}
