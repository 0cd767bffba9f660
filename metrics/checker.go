package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// Snapshot is a gathered view of a registry, for searching metrics in
// tests. Lookups fail the test when a metric cannot be found, so
// assertions stay on the value, not on the plumbing.
type Snapshot struct {
	t        require.TestingT
	families []*gocl.MetricFamily
}

// Gather collects the current state of reg into a Snapshot.
func Gather(t require.TestingT, reg *prometheus.Registry) *Snapshot {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &Snapshot{t: t, families: families}
}

// Counter returns the value of the counter with the given fully
// qualified name and labels.
func (s *Snapshot) Counter(name string, labels map[string]string) float64 {
	m := s.metric(name, labels)
	require.NotNil(s.t, m.Counter, "metric %s must be a counter", name)
	return m.Counter.GetValue()
}

// Gauge returns the value of the gauge with the given fully qualified
// name and labels.
func (s *Snapshot) Gauge(name string, labels map[string]string) float64 {
	m := s.metric(name, labels)
	require.NotNil(s.t, m.Gauge, "metric %s must be a gauge", name)
	return m.Gauge.GetValue()
}

// HistogramCount returns the sample count of the histogram with the
// given fully qualified name and labels.
func (s *Snapshot) HistogramCount(name string, labels map[string]string) uint64 {
	m := s.metric(name, labels)
	require.NotNil(s.t, m.Histogram, "metric %s must be a histogram", name)
	return m.Histogram.GetSampleCount()
}

// Has reports whether a metric with the given fully qualified name and
// labels was gathered, without failing the test.
func (s *Snapshot) Has(name string, labels map[string]string) bool {
	for _, fam := range s.families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.Metric {
			if labelsMatch(m, labels) {
				return true
			}
		}
	}
	return false
}

// Dump prints indented json-formatted metrics info, for easy debugging
func (s *Snapshot) Dump() string {
	out, _ := json.MarshalIndent(s.families, "  ", "  ")
	return string(out)
}

// metric finds exactly one metric by family name and labels, failing
// the test on zero or multiple matches.
func (s *Snapshot) metric(name string, labels map[string]string) *gocl.Metric {
	var fam *gocl.MetricFamily
	for _, f := range s.families {
		if f.GetName() == name {
			fam = f
			break
		}
	}
	require.NotNil(s.t, fam, "cannot find metric family %s", name)

	var found *gocl.Metric
	for _, m := range fam.Metric {
		if labelsMatch(m, labels) {
			require.Nil(s.t, found, "found more than one %s metric with labels %v", name, labels)
			found = m
		}
	}
	require.NotNil(s.t, found, "cannot find %s metric with labels %v", name, labels)
	return found
}

func labelsMatch(m *gocl.Metric, want map[string]string) bool {
	for k, v := range want {
		ok := false
		for _, lab := range m.Label {
			if lab.GetName() == k && lab.GetValue() == v {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
