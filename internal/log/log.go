// Package log is the leveled debug logger used across sqltutor.
//
// Messages at Basic are always printed once the level is raised above Off.
// Wire is reserved for full HTTP dumps of the traffic with the platform API.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type Level int

const (
	Off Level = iota
	Basic
	Detailed
	Trace
	Wire
)

var (
	mu     sync.Mutex
	level            = Off
	output io.Writer = os.Stderr
)

// LevelFromInt clamps an integer verbosity (as passed with --debug) to a Level.
func LevelFromInt(i int) Level {
	switch {
	case i <= 0:
		return Off
	case i >= int(Wire):
		return Wire
	default:
		return Level(i)
	}
}

func (l Level) String() string {
	switch l {
	case Off:
		return "off"
	case Basic:
		return "basic"
	case Detailed:
		return "detailed"
	case Trace:
		return "trace"
	case Wire:
		return "wire"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetOutput redirects log output; nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// Enabled reports whether messages at l would be written.
func Enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return level != Off && l <= level
}

// Log writes at Basic level.
func Log(format string, a ...interface{}) {
	Debug(Basic, format, a...)
}

func Debug(l Level, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level == Off || l > level {
		return
	}
	fmt.Fprintf(output, "[%s] "+format, append([]interface{}{l}, a...)...)
}
