package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

var levelColors = map[LogLevel][]color.Attribute{
	DEBUG: {color.FgHiBlack},
	INFO:  {color.FgBlue},
	WARN:  {color.FgYellow},
	ERROR: {color.FgRed},
	FATAL: {color.FgMagenta, color.Bold},
}

// paint forces color on regardless of color.NoColor; the sink already
// decided whether its destination is a terminal.
func paint(attrs []color.Attribute, s string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (mw *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (mw *MultiWriter) Add(writer io.Writer) {
	mw.writers = append(mw.writers, writer)
}

type sink struct {
	writer   io.Writer
	logger   *log.Logger
	colorize bool
}

func newSink(w io.Writer) *sink {
	return &sink{writer: w, logger: log.New(w, "", 0), colorize: isTerminal(w)}
}

// isTerminal reports whether w is a file attached to a terminal. Anything else
// (buffers, log files, pipes) gets plain output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type ColoredLogger struct {
	verbose bool
	mu      sync.RWMutex
	sinks   map[LogLevel]*sink
	exit    func(int)
}

var globalLogger *ColoredLogger

func init() {
	globalLogger = &ColoredLogger{
		sinks: make(map[LogLevel]*sink),
		exit:  os.Exit,
	}

	for level := DEBUG; level <= FATAL; level++ {
		globalLogger.sinks[level] = newSink(os.Stdout)
	}
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

func IsVerbose() bool {
	globalLogger.mu.RLock()
	defer globalLogger.mu.RUnlock()
	return globalLogger.verbose
}

func SetWriter(level LogLevel, writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks[level] = newSink(writer)
}

func SetWriterForAll(writer io.Writer) {
	for level := DEBUG; level <= FATAL; level++ {
		SetWriter(level, writer)
	}
}

// AddWriter tees the level's output into writer. Once teed, the level is
// written without color so log files stay readable.
func AddWriter(level LogLevel, writer io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	current := globalLogger.sinks[level]

	if mw, ok := current.writer.(*MultiWriter); ok {
		mw.Add(writer)
		return
	}

	multiWriter := NewMultiWriter(current.writer, writer)
	globalLogger.sinks[level] = &sink{
		writer: multiWriter,
		logger: log.New(multiWriter, "", 0),
	}
}

func AddWriterForAll(writer io.Writer) {
	for level := DEBUG; level <= FATAL; level++ {
		AddWriter(level, writer)
	}
}

func SetErrorWriter() {
	SetWriter(ERROR, os.Stderr)
	SetWriter(FATAL, os.Stderr)
}

// SetExitFunc replaces the function Fatal uses to terminate the process.
func SetExitFunc(exit func(int)) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.exit = exit
}

func (cl *ColoredLogger) formatMessage(level LogLevel, message string, colorize bool) string {
	timestamp := time.Now().Format("06-01-02 15:04:05")
	levelName := fmt.Sprintf("%-5s", level.String())

	if !colorize {
		return fmt.Sprintf("[%s] %s %s", timestamp, levelName, message)
	}

	return fmt.Sprintf("%s %s %s",
		paint([]color.Attribute{color.FgHiBlack}, "["+timestamp+"]"),
		paint(levelColors[level], levelName),
		message,
	)
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	if level == DEBUG && !cl.verbose {
		cl.mu.RUnlock()
		return
	}

	s := cl.sinks[level]
	exit := cl.exit
	cl.mu.RUnlock()

	message := fmt.Sprintf(format, args...)
	s.logger.Println(cl.formatMessage(level, message, s.colorize))

	if level == FATAL {
		exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.log(FATAL, format, args...)
}

func GetLogFromLevel(level LogLevel) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		globalLogger.log(level, format, args...)
	}
}
