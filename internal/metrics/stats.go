package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// LatencyProfile describes the latency distribution of one group's records.
// It is informational only and never feeds the winner formula.
type LatencyProfile struct {
	// Group is the label the profile was computed for.
	Group string `json:"group"`

	// Count is the number of samples behind the statistics.
	Count int `json:"count"`

	// Mean is the arithmetic mean latency in seconds.
	Mean float64 `json:"mean"`

	// StdDev is the sample standard deviation, 0 for fewer than two samples.
	StdDev float64 `json:"std_dev"`

	// Min and Max bound the observed latencies.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// P50 and P95 are empirical quantiles of the observed latencies.
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// ComputeLatencyProfile summarizes the latency distribution of a record
// set. Zero records produce a zero profile.
func ComputeLatencyProfile(group string, records []domain.InteractionRecord) LatencyProfile {
	profile := LatencyProfile{Group: group, Count: len(records)}
	if len(records) == 0 {
		return profile
	}

	latencies := make([]float64, len(records))
	for i, r := range records {
		latencies[i] = r.LatencySeconds
	}
	sort.Float64s(latencies)

	profile.Mean = stat.Mean(latencies, nil)
	if len(latencies) > 1 {
		profile.StdDev = stat.StdDev(latencies, nil)
	}
	profile.Min = latencies[0]
	profile.Max = latencies[len(latencies)-1]
	profile.P50 = stat.Quantile(0.5, stat.Empirical, latencies, nil)
	profile.P95 = stat.Quantile(0.95, stat.Empirical, latencies, nil)
	return profile
}

// LatencyComparison reports whether two groups' latency samples differ by
// more than noise. Like LatencyProfile it is informational only; the
// winner formula never consults it.
type LatencyComparison struct {
	// GroupA and GroupB are the compared labels in caller order.
	GroupA string `json:"group_a"`
	GroupB string `json:"group_b"`

	// MeanA and MeanB are the groups' mean latencies in seconds.
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`

	// TStatistic is Welch's t for the two samples.
	TStatistic float64 `json:"t_statistic"`

	// PValue is the two-tailed probability under a normal approximation.
	// It is 1 when either sample is too small to test.
	PValue float64 `json:"p_value"`

	// EffectSize is Cohen's d using the pooled standard deviation.
	EffectSize float64 `json:"effect_size"`

	// Significant reports PValue below the 0.05 level.
	Significant bool `json:"significant"`
}

// CompareLatencies runs Welch's t-test over the two groups' latency
// samples. Samples with fewer than two observations on either side return
// a comparison with PValue 1 and no significance claim.
func CompareLatencies(groupA, groupB string, recordsA, recordsB []domain.InteractionRecord) LatencyComparison {
	samplesA := latencySamples(recordsA)
	samplesB := latencySamples(recordsB)

	cmp := LatencyComparison{GroupA: groupA, GroupB: groupB, PValue: 1}
	if len(samplesA) > 0 {
		cmp.MeanA = stat.Mean(samplesA, nil)
	}
	if len(samplesB) > 0 {
		cmp.MeanB = stat.Mean(samplesB, nil)
	}
	if len(samplesA) < 2 || len(samplesB) < 2 {
		return cmp
	}

	nA := float64(len(samplesA))
	nB := float64(len(samplesB))
	varA := stat.Variance(samplesA, nil)
	varB := stat.Variance(samplesB, nil)

	se := math.Sqrt(varA/nA + varB/nB)
	if se == 0 {
		return cmp
	}
	cmp.TStatistic = (cmp.MeanA - cmp.MeanB) / se
	cmp.PValue = 2 * (1 - normalCDF(math.Abs(cmp.TStatistic)))
	cmp.Significant = cmp.PValue < 0.05

	pooledStd := math.Sqrt((varA + varB) / 2)
	if pooledStd > 0 {
		cmp.EffectSize = (cmp.MeanA - cmp.MeanB) / pooledStd
	}
	return cmp
}

func latencySamples(records []domain.InteractionRecord) []float64 {
	if len(records) == 0 {
		return nil
	}
	samples := make([]float64, len(records))
	for i, r := range records {
		samples[i] = r.LatencySeconds
	}
	return samples
}

// normalCDF approximates the standard normal CDF via the error function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
