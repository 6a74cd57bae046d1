package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	name        = "github.com/hyperledger-labs/aero-relay"
	serviceName = "aero-relay"

	propagatorsKey  = "OTEL_PROPAGATORS"
	tracesKey       = "OTEL_TRACES_EXPORTER"
	metricsKey      = "OTEL_METRICS_EXPORTER"
	logsKey         = "OTEL_LOGS_EXPORTER"
	prometheusHost  = "OTEL_EXPORTER_PROMETHEUS_HOST"
	prometheusPort  = "OTEL_EXPORTER_PROMETHEUS_PORT"
	consoleWriterFn = "OTEL_EXPORTER_CONSOLE_%s_WRITER"
)

// signal describes the environment of one telemetry signal.
type signal struct {
	kind            string
	exporterKey     string
	defaultExporter string
}

var (
	tracesSignal  = signal{"TRACES", tracesKey, "none"}
	metricsSignal = signal{"METRICS", metricsKey, "prometheus"}
	logsSignal    = signal{"LOGS", logsKey, "none"}
)

// exporters returns the exporter names selected for s, without duplicates.
func (s signal) exporters() []string {
	names := strings.Split(getEnv(s.exporterKey, s.defaultExporter), ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func (s signal) unsupported(exporter string) error {
	return fmt.Errorf("unsupported exporter: %q from %s=%q", exporter, s.exporterKey, os.Getenv(s.exporterKey))
}

// consoleWriter returns the writer of the console exporter of s, stdout by default.
func (s signal) consoleWriter() (io.Writer, error) {
	key := fmt.Sprintf(consoleWriterFn, s.kind)
	switch v := getEnv(key, "stdout"); v {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unknown writer: %q from %s", v, key)
	}
}

// shutdownStack shuts providers down in the reverse order of their installation.
type shutdownStack []func(context.Context) error

func (s *shutdownStack) push(fn func(context.Context) error) {
	*s = append(*s, fn)
}

func (s *shutdownStack) shutdown(ctx context.Context) error {
	var err error
	for i := len(*s) - 1; i >= 0; i-- {
		err = errors.Join(err, (*s)[i](ctx))
	}
	*s = nil
	return err
}

// SetupOTelSDK installs the global propagator and the tracer, meter and logger providers
// selected by the OTEL_*_EXPORTER environment variables. Unknown names are errors.
// On success the caller owns shutdown.
func SetupOTelSDK(ctx context.Context) (func(context.Context) error, error) {
	var stack shutdownStack
	fail := func(err error) (func(context.Context) error, error) {
		return nil, errors.Join(err, stack.shutdown(ctx))
	}

	prop, err := newPropagator()
	if err != nil {
		return fail(err)
	}
	res, err := newResource(ctx)
	if err != nil {
		return fail(err)
	}

	tp, err := newTracerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	stack.push(tp.Shutdown)

	mp, err := newMeterProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	stack.push(mp.Shutdown)

	lp, err := newLoggerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	stack.push(lp.Shutdown)

	otel.SetTextMapPropagator(prop)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)
	return stack.shutdown, nil
}

func getEnv(envName, defaultValue string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return defaultValue
}

// newResource names the service; OTEL_SERVICE_NAME and OTEL_RESOURCE_ATTRIBUTES take precedence.
func newResource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}
	return res, nil
}

func newPropagator() (propagation.TextMapPropagator, error) {
	var propagators []propagation.TextMapPropagator
	for _, p := range strings.Split(getEnv(propagatorsKey, "tracecontext,baggage"), ",") {
		switch strings.TrimSpace(p) {
		case "tracecontext":
			propagators = append(propagators, propagation.TraceContext{})
		case "baggage":
			propagators = append(propagators, propagation.Baggage{})
		default:
			return nil, fmt.Errorf("unsupported propagator: %q from %s=%q", p, propagatorsKey, os.Getenv(propagatorsKey))
		}
	}
	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exporter := range tracesSignal.exporters() {
		var (
			exp sdktrace.SpanExporter
			err error
		)
		switch exporter {
		case "otlp":
			exp, err = otlptracegrpc.New(ctx)
		case "console":
			var w io.Writer
			if w, err = tracesSignal.consoleWriter(); err == nil {
				exp, err = stdouttrace.New(stdouttrace.WithWriter(w))
			}
		case "none":
			continue
		default:
			err = tracesSignal.unsupported(exporter)
		}
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, exporter := range metricsSignal.exporters() {
		var (
			reader sdkmetric.Reader
			err    error
		)
		switch exporter {
		case "otlp":
			var exp sdkmetric.Exporter
			if exp, err = otlpmetricgrpc.New(ctx); err == nil {
				reader = sdkmetric.NewPeriodicReader(exp)
			}
		case "console":
			var w io.Writer
			if w, err = metricsSignal.consoleWriter(); err == nil {
				var exp sdkmetric.Exporter
				if exp, err = stdoutmetric.New(stdoutmetric.WithWriter(w)); err == nil {
					reader = sdkmetric.NewPeriodicReader(exp)
				}
			}
		case "prometheus":
			addr := fmt.Sprintf("%s:%s", getEnv(prometheusHost, "localhost"), getEnv(prometheusPort, "9464"))
			reader, err = NewPrometheusExporter(addr)
		case "none":
			continue
		default:
			err = metricsSignal.unsupported(exporter)
		}
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func newLoggerProvider(ctx context.Context, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, exporter := range logsSignal.exporters() {
		var (
			exp sdklog.Exporter
			err error
		)
		switch exporter {
		case "otlp":
			exp, err = otlploggrpc.New(ctx)
		case "console":
			var w io.Writer
			if w, err = logsSignal.consoleWriter(); err == nil {
				exp, err = stdoutlog.New(stdoutlog.WithWriter(w))
			}
		case "none":
			continue
		default:
			err = logsSignal.unsupported(exporter)
		}
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)))
	}
	return sdklog.NewLoggerProvider(opts...), nil
}
