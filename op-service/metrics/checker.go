package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// MetricFamiliesChecker gathers a registry once and looks up metrics in tests.
type MetricFamiliesChecker struct {
	families []*gocl.MetricFamily
	t        require.TestingT
}

// NewMetricChecker gathers reg, failing the test if that is not possible.
func NewMetricChecker(t require.TestingT, reg prometheus.Gatherer) *MetricFamiliesChecker {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &MetricFamiliesChecker{families: families, t: t}
}

// FindByName returns the family with the given full name, failing the test if it is missing.
func (m *MetricFamiliesChecker) FindByName(name string) *MetricFamilyChecker {
	for _, f := range m.families {
		if f.GetName() == name {
			return &MetricFamilyChecker{fam: f, t: m.t}
		}
	}
	require.FailNow(m.t, "cannot find metric family", name)
	return nil
}

// Has reports whether a family with the given name was gathered.
func (m *MetricFamiliesChecker) Has(name string) bool {
	for _, f := range m.families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

// Dump prints indented json-formatted metrics info, for easy debugging
func (m *MetricFamiliesChecker) Dump() string {
	outStr, _ := json.MarshalIndent(m.families, "  ", "  ")
	return string(outStr)
}

type MetricFamilyChecker struct {
	fam *gocl.MetricFamily
	t   require.TestingT
}

// FindByLabels returns the single metric carrying all the given labels.
func (f *MetricFamilyChecker) FindByLabels(labels map[string]string) *gocl.Metric {
	var found *gocl.Metric
	for _, m := range f.fam.GetMetric() {
		if matchLabels(m, labels) {
			require.Nil(f.t, found, "labels must select a single metric")
			found = m
		}
	}
	require.NotNil(f.t, found, "cannot find metric with labels %v", labels)
	return found
}

// Value returns the gauge or counter value of the metric carrying the given labels.
func (f *MetricFamilyChecker) Value(labels map[string]string) float64 {
	m := f.FindByLabels(labels)
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	}
	require.FailNow(f.t, "metric is neither gauge nor counter")
	return 0
}

func matchLabels(m *gocl.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lab := range m.GetLabel() {
			if lab.GetName() == k && lab.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
