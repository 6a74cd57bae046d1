package telemetry

import (
	"fmt"
	"net/http"

	"github.com/hyperledger-labs/aero-relay/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
)

const (
	namespaceRoot = "relayer"
)

var (
	ProcessedBlockHeightGauge     *Int64SyncGauge
	PacketsRelayedCounter         api.Int64Counter
	PacketDecodeErrorsCounter     api.Int64Counter
	MessageBuildErrorsCounter     api.Int64Counter
	HeightProcessingFaultsCounter api.Int64Counter

	meter = otel.Meter(name)
)

func InitializeMetrics() error {
	var err error

	// create the instrument "relayer.processed_block_height"
	name := fmt.Sprintf("%s.processed_block_height", namespaceRoot)
	if ProcessedBlockHeightGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("last source chain height fully processed by a poller"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	counters := []struct {
		counter     *api.Int64Counter
		suffix      string
		description string
	}{
		{&PacketsRelayedCounter, "packets_relayed", "number of receive messages handed to the sink"},
		{&PacketDecodeErrorsCounter, "packet_decode_errors", "number of channel events rejected by the packet decoder"},
		{&MessageBuildErrorsCounter, "message_build_errors", "number of decoded packets for which no receive message could be built"},
		{&HeightProcessingFaultsCounter, "height_processing_faults", "number of heights whose processing failed and will be retried"},
	}
	for _, c := range counters {
		name := fmt.Sprintf("%s.%s", namespaceRoot, c.suffix)
		if *c.counter, err = meter.Int64Counter(
			name,
			api.WithUnit("1"),
			api.WithDescription(c.description),
		); err != nil {
			return fmt.Errorf("failed to create the instrument %s: %v", name, err)
		}
	}

	return nil
}

func NewPrometheusExporter(addr string) (*prometheus.Exporter, error) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger := log.GetLogger().WithModule("telemetry")
			logger.Fatal("Prometheus exporter server failed", err)
		}
	}()

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create the Prometheus Exporter: %v", err)
	}

	return exporter, nil
}
