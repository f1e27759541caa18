package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	config "github.com/mwantia/docarchive/internal/config/server"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerService interface {
	Debug(msg string, args ...any)

	Info(msg string, args ...any)

	Warn(msg string, args ...any)

	Error(msg string, args ...any)

	Fatal(msg string, args ...any)

	// Named returns a child logger whose component is nested under this one.
	Named(name string) LoggerService

	// With returns a child logger that attaches key=value to every entry,
	// e.g. the request id or the acting principal.
	With(key string, value any) LoggerService
}

type LoggerServiceImpl struct {
	LoggerService

	cfg       config.LogServerConfig
	component string
	fields    []field
	level     LogLevel
	mutex     *sync.Mutex
	writer    io.Writer
	closer    io.Closer
}

type field struct {
	key   string
	value any
}

type archiveEntry struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"msg"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func NewLoggerService(component string, cfg config.LogServerConfig) LoggerService {
	impl := &LoggerServiceImpl{
		cfg:       cfg,
		component: component,
		level:     Parse(cfg.Level),
		mutex:     &sync.Mutex{},
	}

	impl.writer, impl.closer = openOutputs(cfg)
	return impl
}

// NewWriterLogger logs to w only, ignoring the terminal and file settings.
func NewWriterLogger(component string, cfg config.LogServerConfig, w io.Writer) LoggerService {
	cfg.NoTerminal = true
	cfg.NoColor = true
	cfg.File = ""

	return &LoggerServiceImpl{
		cfg:       cfg,
		component: component,
		level:     Parse(cfg.Level),
		mutex:     &sync.Mutex{},
		writer:    w,
	}
}

// Discard returns a logger that drops every entry.
func Discard() LoggerService {
	return &LoggerServiceImpl{
		level:  off,
		mutex:  &sync.Mutex{},
		writer: io.Discard,
	}
}

// openOutputs combines the terminal and the rotated log file. With both
// disabled the archive still logs to stdout.
func openOutputs(cfg config.LogServerConfig) (io.Writer, io.Closer) {
	var (
		outputs []io.Writer
		closer  io.Closer
	)

	if !cfg.NoTerminal {
		outputs = append(outputs, os.Stdout)
	}

	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		}
		outputs = append(outputs, rotated)
		closer = rotated
	}

	if len(outputs) == 0 {
		return os.Stdout, nil
	}
	return io.MultiWriter(outputs...), closer
}

func (impl *LoggerServiceImpl) log(level LogLevel, msg string, args ...any) {
	if level < impl.level {
		return
	}

	var line string
	if impl.cfg.JSON {
		line = impl.formatJSON(level, fmt.Sprintf(msg, args...))
	} else {
		line = impl.formatText(level, fmt.Sprintf(msg, args...))
	}

	impl.mutex.Lock()
	fmt.Fprintln(impl.writer, line)
	impl.mutex.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (impl *LoggerServiceImpl) formatJSON(level LogLevel, msg string) string {
	entry := archiveEntry{
		Time:      time.Now().Format(impl.cfg.TimeFormat),
		Level:     level.String(),
		Component: impl.component,
		Message:   msg,
	}
	if len(impl.fields) > 0 {
		entry.Fields = make(map[string]any, len(impl.fields))
		for _, f := range impl.fields {
			entry.Fields[f.key] = f.value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Unencodable field values fall back to their printed form.
		for k, v := range entry.Fields {
			entry.Fields[k] = fmt.Sprint(v)
		}
		data, _ = json.Marshal(entry)
	}
	return string(data)
}

func (impl *LoggerServiceImpl) formatText(level LogLevel, msg string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %-5s", time.Now().Format(impl.cfg.TimeFormat), level)
	if impl.component != "" {
		fmt.Fprintf(&b, " [%s]", impl.component)
	}
	b.WriteString(" ")
	b.WriteString(msg)

	fields := make([]field, len(impl.fields))
	copy(fields, impl.fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].key < fields[j].key })
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}

	if !impl.cfg.NoTerminal && !impl.cfg.NoColor {
		return Color(level) + b.String() + "\033[0m"
	}
	return b.String()
}

func (impl *LoggerServiceImpl) Debug(msg string, args ...any) {
	impl.log(Debug, msg, args...)
}

func (impl *LoggerServiceImpl) Info(msg string, args ...any) {
	impl.log(Info, msg, args...)
}

func (impl *LoggerServiceImpl) Warn(msg string, args ...any) {
	impl.log(Warn, msg, args...)
}

func (impl *LoggerServiceImpl) Error(msg string, args ...any) {
	impl.log(Error, msg, args...)
}

func (impl *LoggerServiceImpl) Fatal(msg string, args ...any) {
	impl.log(Fatal, msg, args...)
}

func (impl *LoggerServiceImpl) Named(name string) LoggerService {
	child := impl.child()
	if impl.component != "" {
		child.component = impl.component + "/" + name
	} else {
		child.component = name
	}
	return child
}

func (impl *LoggerServiceImpl) With(key string, value any) LoggerService {
	child := impl.child()
	for i, f := range child.fields {
		if f.key == key {
			child.fields[i].value = value
			return child
		}
	}
	child.fields = append(child.fields, field{key: key, value: value})
	return child
}

// child shares the writer and the lock; fields are copied so siblings
// never see each other's values.
func (impl *LoggerServiceImpl) child() *LoggerServiceImpl {
	fields := make([]field, len(impl.fields), len(impl.fields)+1)
	copy(fields, impl.fields)

	return &LoggerServiceImpl{
		cfg:       impl.cfg,
		component: impl.component,
		fields:    fields,
		level:     impl.level,
		mutex:     impl.mutex,
		writer:    impl.writer,
	}
}

// Close releases the rotating file writer, if any.
func (impl *LoggerServiceImpl) Close() error {
	if impl.closer != nil {
		return impl.closer.Close()
	}
	return nil
}
