package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mantlenetworkio/da-cost/op-dacost/cost"
	opmetrics "github.com/mantlenetworkio/da-cost/op-service/metrics"
)

const Namespace = "op_dacost"

const (
	ScopeBatch   = "batch"
	ScopeChannel = "channel"
)

type Metricer interface {
	RecordInfo(version string)

	RecordBlockFetched(number uint64, txs int)
	RecordBatch(number uint64, m cost.Metrics)
	RecordChannel(numBatches int, m cost.Metrics)
	RecordFrames(fm cost.FramedMetrics)
	RecordRunDuration(d time.Duration)
}

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  opmetrics.Factory

	info prometheus.GaugeVec

	blocksFetched prometheus.Counter
	txsFetched    prometheus.Counter

	// labeled by scope and block, the channel scope uses block "all"
	sizeBytes prometheus.GaugeVec
	gas       prometheus.GaugeVec
	rate      prometheus.GaugeVec

	batchComprRatio prometheus.Histogram
	channelBatches  prometheus.Gauge

	frames      prometheus.Gauge
	framedBytes prometheus.Gauge
	framedGas   prometheus.Gauge

	runDuration prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	registry := opmetrics.NewRegistry()
	factory := opmetrics.With(registry)

	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		blocksFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "blocks_fetched_total",
			Help:      "Number of blocks fetched from the node",
		}),
		txsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "txs_fetched_total",
			Help:      "Number of transactions fetched from the node",
		}),
		sizeBytes: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "size_bytes",
			Help:      "Raw, compressed and FastLZ size of batches and the channel",
		}, []string{"scope", "block", "form"}),
		gas: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "calldata_gas",
			Help:      "Calldata gas of batches and the channel, before and after compression",
		}, []string{"scope", "block", "form"}),
		rate: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "compression_rate_percent",
			Help:      "Compressed size or gas as a percentage of the raw value",
		}, []string{"scope", "block", "kind"}),
		batchComprRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "batch_compr_ratio",
			Buckets:   append([]float64{0.1, 0.2}, prometheus.LinearBuckets(0.3, 0.05, 14)...),
			Help:      "Compression ratios of batches",
		}),
		channelBatches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "channel_batches",
			Help:      "Number of batches in the channel",
		}),
		frames: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "channel_frames",
			Help:      "Number of frames the compressed channel is split into",
		}),
		framedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "channel_framed_bytes",
			Help:      "Calldata bytes of all batcher transactions carrying the channel",
		}),
		framedGas: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "channel_framed_gas",
			Help:      "Calldata gas of all batcher transactions carrying the channel",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "run_duration_seconds",
			Help:      "Duration of the estimation run",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile exports the current values of all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	return opmetrics.WriteTextfile(path, m.registry)
}

// RecordInfo sets a pseudo-metric that contains versioning and
// config info for the op-dacost.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

func (m *Metrics) RecordBlockFetched(number uint64, txs int) {
	m.blocksFetched.Inc()
	m.txsFetched.Add(float64(txs))
}

func (m *Metrics) RecordBatch(number uint64, cm cost.Metrics) {
	m.recordMeasurement(ScopeBatch, strconv.FormatUint(number, 10), cm)
	if cm.RawSize > 0 {
		m.batchComprRatio.Observe(float64(cm.CompressedSize) / float64(cm.RawSize))
	}
}

func (m *Metrics) RecordChannel(numBatches int, cm cost.Metrics) {
	m.recordMeasurement(ScopeChannel, "all", cm)
	m.channelBatches.Set(float64(numBatches))
}

func (m *Metrics) recordMeasurement(scope, block string, cm cost.Metrics) {
	m.sizeBytes.WithLabelValues(scope, block, "raw").Set(float64(cm.RawSize))
	m.sizeBytes.WithLabelValues(scope, block, "compressed").Set(float64(cm.CompressedSize))
	m.sizeBytes.WithLabelValues(scope, block, "fastlz").Set(float64(cm.FastLZSize))
	m.gas.WithLabelValues(scope, block, "raw").Set(float64(cm.RawGas))
	m.gas.WithLabelValues(scope, block, "compressed").Set(float64(cm.CompressedGas))
	m.rate.WithLabelValues(scope, block, "bytes").Set(cm.ByteCompressionRate)
	m.rate.WithLabelValues(scope, block, "gas").Set(cm.GasCompressionRate)
}

func (m *Metrics) RecordFrames(fm cost.FramedMetrics) {
	m.frames.Set(float64(fm.Frames))
	m.framedBytes.Set(float64(fm.FramedBytes))
	m.framedGas.Set(float64(fm.FramedGas))
}

func (m *Metrics) RecordRunDuration(d time.Duration) {
	m.runDuration.Set(d.Seconds())
}
