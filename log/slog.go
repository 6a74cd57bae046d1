package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const otelScopeName = "github.com/hyperledger-labs/aero-relay"

type RelayLogger struct {
	*slog.Logger
}

var relayLogger *RelayLogger

// InitLogger sets the global logger. output is "stdout", "stderr" or a file path.
func InitLogger(logLevel, format, output string, enableTelemetry bool) error {
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "":
		return errors.New("invalid log output")
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "failed to open log file %s", output)
		}
		writer = f
	}
	return InitLoggerWithWriter(logLevel, format, writer, enableTelemetry)
}

// InitLoggerWithFile behaves like InitLogger and additionally mirrors every record into file,
// which is rotated daily.
func InitLoggerWithFile(logLevel, format, output, file string, enableTelemetry bool) error {
	if file == "" {
		return InitLogger(logLevel, format, output, enableTelemetry)
	}
	if err := InitLogger(logLevel, format, output, enableTelemetry); err != nil {
		return err
	}
	f, err := openDailyFile(file, time.Now)
	if err != nil {
		return err
	}
	fileHandler, err := newHandler(logLevel, format, f)
	if err != nil {
		return err
	}
	relayLogger = &RelayLogger{
		slog.New(slogmulti.Fanout(relayLogger.Handler(), fileHandler)),
	}
	return nil
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer, enableTelemetry bool) error {
	handler, err := newHandler(logLevel, format, writer)
	if err != nil {
		return err
	}

	if enableTelemetry {
		handler = slogmulti.Fanout(handler, otelslog.NewHandler(otelScopeName))
	}

	relayLogger = &RelayLogger{
		slog.New(handler),
	}
	return nil
}

func newHandler(logLevel, format string, writer io.Writer) (slog.Handler, error) {
	var slogLevel slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		slogLevel = slog.LevelDebug
	case "INFO":
		slogLevel = slog.LevelInfo
	case "WARN":
		slogLevel = slog.LevelWarn
	case "ERROR":
		slogLevel = slog.LevelError
	default:
		return nil, errors.Newf("invalid log level: %s", logLevel)
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	switch format {
	case "text":
		return slog.NewTextHandler(writer, handlerOpts), nil
	case "json":
		return slog.NewJSONHandler(writer, handlerOpts), nil
	default:
		return nil, errors.Newf("invalid log format: %s", format)
	}
}

// GetLogger returns the global logger. A discarding logger is returned before InitLogger is called.
func GetLogger() *RelayLogger {
	if relayLogger == nil {
		return &RelayLogger{slog.New(slog.NewTextHandler(io.Discard, nil))}
	}
	return relayLogger
}

func (rl *RelayLogger) log(ctx context.Context, level slog.Level, skip int, msg string, args ...any) {
	if !rl.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [runtime.Callers, this function, ...]
	runtime.Callers(2+skip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	if ctx == nil {
		ctx = context.Background()
	}
	_ = rl.Handler().Handle(ctx, r)
}

func (rl *RelayLogger) Error(msg string, err error, otherArgs ...any) {
	rl.log(context.Background(), slog.LevelError, 1, msg, append([]any{"error", err}, otherArgs...)...)
}

func (rl *RelayLogger) ErrorContext(ctx context.Context, msg string, err error, otherArgs ...any) {
	rl.log(ctx, slog.LevelError, 1, msg, append([]any{"error", err}, otherArgs...)...)
}

func (rl *RelayLogger) Fatal(msg string, err error, otherArgs ...any) {
	rl.log(context.Background(), slog.LevelError, 1, msg, append([]any{"error", err}, otherArgs...)...)
	os.Exit(1)
}

func (rl *RelayLogger) ErrorWithStack(msg string, err error, otherArgs ...any) {
	cError := errors.NewWithDepth(1, err.Error())
	args := append([]any{"error", err, "stack", fmt.Sprintf("%+v", cError)}, otherArgs...)
	rl.log(context.Background(), slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) WithRelay(name, srcChainID, dstChainID string) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"relay", name,
			"src_chain_id", srcChainID,
			"dst_chain_id", dstChainID,
		),
	}
}

func (rl *RelayLogger) WithChannel(
	srcChannelID, srcPortID string,
	dstChannelID, dstPortID string,
) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"channel_id", srcChannelID,
			"src_port_id", srcPortID,
			"dst_channel_id", dstChannelID,
			"dst_port_id", dstPortID,
		),
	}
}

func (rl *RelayLogger) WithModule(moduleName string) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"module", moduleName,
		),
	}
}

// With shadows slog.Logger.With so that the returned value keeps the RelayLogger methods.
func (rl *RelayLogger) With(args ...any) *RelayLogger {
	return &RelayLogger{rl.Logger.With(args...)}
}
