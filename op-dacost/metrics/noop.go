package metrics

import (
	"time"

	"github.com/mantlenetworkio/da-cost/op-dacost/cost"
)

type noopMetrics struct{}

var NoopMetrics Metricer = new(noopMetrics)

func (*noopMetrics) RecordInfo(version string) {}

func (*noopMetrics) RecordBlockFetched(number uint64, txs int)    {}
func (*noopMetrics) RecordBatch(number uint64, m cost.Metrics)    {}
func (*noopMetrics) RecordChannel(numBatches int, m cost.Metrics) {}
func (*noopMetrics) RecordFrames(fm cost.FramedMetrics)           {}
func (*noopMetrics) RecordRunDuration(d time.Duration)            {}
