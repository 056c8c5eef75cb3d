package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/abibind/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the CLI starts. Each
// module/package should create its own sub-logger. This allows to create unique logging instances depending on the
// use case.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured
// with colors, and unstructured formats.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// fields describes the key-value context every event of this logger carries. Sub-loggers extend it.
	fields [][2]string

	// structuredLogger describes a logger that will be used to output structured logs to any arbitrary channel.
	structuredLogger zerolog.Logger

	// structuredWriters describes the various channels that the output from the structuredLogger will go to.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to stream un-colorized, unstructured output to any
	// arbitrary channel.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the various channels that the output from the unstructuredLogger will go to.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to stream colorized, unstructured output to any
	// arbitrary channel.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the various channels that the output from the unstructuredColorLogger will
	// go to.
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. By default, a logger that is instantiated
// with this function is not usable until a log channel is added. To add or remove channels that the logger streams
// logs to, call the Logger.AddWriter and Logger.RemoveWriter functions.
func NewLogger(level zerolog.Level) *Logger {
	logger := &Logger{level: level}
	logger.rebuild()
	return logger
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of
// this function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on
// some key.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	fields := make([][2]string, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)

	subLogger := &Logger{
		level:                    l.level,
		fields:                   append(fields, [2]string{key, value}),
		structuredWriters:        l.structuredWriters,
		unstructuredWriters:      l.unstructuredWriters,
		unstructuredColorWriters: l.unstructuredColorWriters,
	}
	subLogger.rebuild()
	return subLogger
}

// AddWriter will add a writer to which log output will go to. If the format is structured then the writer will
// receive structured output. If the format is unstructured, then the writer will receive unstructured output,
// colorized if requested. If the writer was already added, this function is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. The writer will be either
// removed from the structured, unstructured and colorized, or unstructured and non-colorized writer(s). If the
// writer does not exist, this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i:i], (*writers)[i+1:]...)
			l.rebuild()
			return
		}
	}
}

// writersFor returns the list of writers for the given format and coloring.
func (l *Logger) writersFor(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild re-creates the underlying zerolog loggers from the current writers, level and context fields.
func (l *Logger) rebuild() {
	l.structuredLogger = l.newLogger(l.structuredWriters, func(w io.Writer) io.Writer {
		return w
	}, true)
	l.unstructuredLogger = l.newLogger(l.unstructuredWriters, func(w io.Writer) io.Writer {
		return formatUnstructuredWriter(zerolog.ConsoleWriter{Out: w, NoColor: true}, l.level)
	}, false)
	l.unstructuredColorLogger = l.newLogger(l.unstructuredColorWriters, func(w io.Writer) io.Writer {
		return formatUnstructuredWriter(zerolog.ConsoleWriter{Out: w, NoColor: !colors.Enabled()}, l.level)
	}, false)
}

// newLogger creates a zerolog.Logger streaming to the given writers, each wrapped by the provided function. Without
// writers the logger is disabled.
func (l *Logger) newLogger(writers []io.Writer, wrap func(io.Writer) io.Writer, timestamp bool) zerolog.Logger {
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	wrapped := make([]io.Writer, len(writers))
	for i, w := range writers {
		wrapped[i] = wrap(w)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(wrapped...)).Level(l.level).With()
	if timestamp {
		ctx = ctx.Timestamp()
	}
	for _, field := range l.fields {
		ctx = ctx.Str(field[0], field[1])
	}
	return ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages for the provided arguments and sends an event of the given level to every channel.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, noColorMsg, err, info := buildMsgs(args...)

	// Instantiate log events
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	unstructuredColorLog := l.unstructuredColorLogger.WithLevel(level)

	// Chain the error. Stack traces are only added when debugging or panicking.
	withStack := l.level <= zerolog.DebugLevel || level == zerolog.PanicLevel
	for _, event := range []*zerolog.Event{structuredLog, unstructuredLog, unstructuredColorLog} {
		if event == nil {
			continue
		}
		if err != nil {
			event.Err(err)
			if withStack {
				event.Stack()
			}
		}
		if info != nil {
			event.Any("info", info)
		}
	}

	// Send off the logs. The structured message is sent last so that all channels receive a panic log.
	if unstructuredColorLog != nil {
		unstructuredColorLog.Msg(colorMsg)
	}
	if unstructuredLog != nil {
		unstructuredLog.Msg(noColorMsg)
	}
	if structuredLog != nil {
		structuredLog.Msg(noColorMsg)
	}
	if level == zerolog.PanicLevel {
		panic(noColorMsg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used
// for console logging while the second string will be a non-colorized one that can be used for file/structured
// logging. The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	colorOutput := make([]string, 0)
	noColorOutput := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case error:
			// Note that only one error can be provided for each log message
			err = t
		default:
			// In the base case, append the object to the two string buffers. The colored string buffer will have the
			// current color context applied to it.
			colorOutput = append(colorOutput, colorCtx(t))
			noColorOutput = append(noColorOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(noColorOutput, ""), err, info
}

// formatUnstructuredWriter will update the console writer's formatting to the abibind standard
func formatUnstructuredWriter(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for unstructured output
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	// Messages are colorized by the caller through color functions, never by the writer
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%v", i)
	}

	// We will define a custom format for each level. Writers without color get the same glyphs, uncolored.
	colorize := func(colorFunc colors.ColorFunc, s string) string {
		if writer.NoColor {
			return s
		}
		return colorFunc(s)
	}
	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		// Switch on the level and return a custom, colored string
		switch parsed {
		case zerolog.TraceLevel:
			return colorize(colors.CyanBold, zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colorize(colors.BlueBold, zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colorize(colors.GreenBold, colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colorize(colors.YellowBold, zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colorize(colors.RedBold, zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colorize(colors.RedBold, zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colorize(colors.RedBold, zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// If we are above debug level, we want to get rid of the `module` component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
