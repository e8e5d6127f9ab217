package metrics

import (
	"slices"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Sample is a flattened counter, gauge or histogram count
type Sample struct {
	Name   string
	Labels string // key=value pairs joined by commas, sorted by key
	Value  float64
}

// Gather collects samples whose metric name starts with prefix.
// Histograms contribute their observation count.
func Gather(g prometheus.Gatherer, prefix string) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, family := range families {
		name := family.GetName()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, metric := range family.GetMetric() {
			value, ok := sampleValue(family.GetType(), metric)
			if !ok {
				continue
			}
			samples = append(samples, Sample{
				Name:   name,
				Labels: formatLabels(metric.GetLabel()),
				Value:  value,
			})
		}
	}

	slices.SortFunc(samples, func(a, b Sample) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})
	return samples, nil
}

func sampleValue(kind dto.MetricType, metric *dto.Metric) (float64, bool) {
	switch kind {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue(), true
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount()), true
	default:
		return 0, false
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
