package logging

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	color "github.com/pigment/pngpipe/src/ansicolor"
	"github.com/pigment/pngpipe/src/config"
	"github.com/pigment/pngpipe/src/oops"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	log.Logger = log.Output(NewPrettyZerologWriter())
	zerolog.SetGlobalLevel(config.Config.LogLevel)
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Trace() *zerolog.Event {
	return log.Trace().Timestamp().Stack()
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}

func Fatal() *zerolog.Event {
	return log.Fatal().Timestamp().Stack()
}

func With() zerolog.Context {
	return log.With().Stack()
}

type loggerContextKey struct{}

func AttachLoggerToContext(logger *zerolog.Logger, ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

func ExtractLogger(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*zerolog.Logger); ok {
		return logger
	}
	return GlobalLogger()
}

func LogPanics(logger *zerolog.Logger) {
	if r := recover(); r != nil {
		LogPanicValue(logger, r, "recovered from panic")
	}
}

func LogPanicValue(logger *zerolog.Logger, val interface{}, msg string) {
	if logger == nil {
		logger = GlobalLogger()
	}

	if err, ok := val.(error); ok {
		l := logger.Error().Err(err)
		if _, ok := err.(*oops.Error); !ok {
			l = l.Interface(zerolog.ErrorStackFieldName, oops.Trace())
		}
		l.Msg(msg)
	} else {
		logger.Error().
			Interface("recovered", val).
			Interface(zerolog.ErrorStackFieldName, oops.Trace()).
			Msg(msg)
	}
}

// PrettyZerologWriter renders zerolog's JSON lines for humans on stderr.
// Multi-line entries (errors, stacks, extra fields) get a separator rule so
// they stand apart from the single-line chatter around them.
type PrettyZerologWriter struct {
	wd                  string
	wasLastLogMultiline bool
}

var colorFromLevel = map[string]string{
	"trace": color.Gray,
	"debug": color.Gray,
	"info":  color.BgBlue,
	"warn":  color.BgYellow,
	"error": color.BgRed,
	"fatal": color.BgRed,
	"panic": color.BgRed,
}

func NewPrettyZerologWriter() *PrettyZerologWriter {
	wd, _ := os.Getwd()
	return &PrettyZerologWriter{wd: wd}
}

func (w *PrettyZerologWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return os.Stderr.Write(p)
	}

	var timestamp, level, message, errmsg string
	var stackTrace []interface{}
	type extraField struct {
		name  string
		value interface{}
	}
	var extras []extraField

	for name, val := range fields {
		switch name {
		case zerolog.TimestampFieldName:
			timestamp, _ = val.(string)
		case zerolog.LevelFieldName:
			level, _ = val.(string)
		case zerolog.MessageFieldName:
			message, _ = val.(string)
		case zerolog.ErrorFieldName:
			errmsg, _ = val.(string)
		case zerolog.ErrorStackFieldName:
			stackTrace, _ = val.([]interface{})
		default:
			extras = append(extras, extraField{name, val})
		}
	}
	sort.Slice(extras, func(i, j int) bool {
		return extras[i].name < extras[j].name
	})

	isMultiline := errmsg != "" || stackTrace != nil || len(extras) > 0

	var b strings.Builder
	if isMultiline || w.wasLastLogMultiline {
		b.WriteString("---------------------------------------\n")
	}
	b.WriteString(timestamp)
	b.WriteString(" ")
	if level != "" {
		b.WriteString(colorFromLevel[level])
		b.WriteString(color.Bold)
		b.WriteString(strings.ToUpper(level))
		b.WriteString(color.Reset)
		b.WriteString(": ")
	}
	b.WriteString(message)
	b.WriteString("\n")
	if errmsg != "" {
		b.WriteString("  " + color.Bold + color.Red + "ERROR:" + color.Reset + " ")
		b.WriteString(errmsg)
		b.WriteString("\n")
	}
	if len(extras) > 0 {
		b.WriteString("  " + color.Bold + color.Blue + "Fields:" + color.Reset + "\n")
		for _, field := range extras {
			valuePretty, _ := json.MarshalIndent(field.value, "    ", "  ")
			b.WriteString("    ")
			b.WriteString(field.name)
			b.WriteString(": ")
			b.Write(valuePretty)
			b.WriteString("\n")
		}
	}
	if stackTrace != nil {
		b.WriteString("  " + color.Bold + color.Blue + "Stack trace:" + color.Reset + "\n")
		for _, frame := range stackTrace {
			frameMap, ok := frame.(map[string]interface{})
			if !ok {
				continue
			}
			file, _ := frameMap["file"].(string)
			file = strings.Replace(file, w.wd, ".", 1)
			function, _ := frameMap["function"].(string)
			line, _ := frameMap["line"].(float64)

			b.WriteString("    ")
			b.WriteString(function)
			b.WriteString(" (")
			b.WriteString(file)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(int(line)))
			b.WriteString(")\n")
		}
	}

	w.wasLastLogMultiline = isMultiline

	return os.Stderr.Write([]byte(b.String()))
}
