// Package observe provides OpenTelemetry metric instruments for the data
// preparation pipeline. Instruments are constructed from an injected
// metric.MeterProvider; tests should pass a private provider to avoid
// cross-test pollution. A package-level default built from the global
// provider is available through Default.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all pipeline metrics.
const meterName = "github.com/Max1Denysov/sova-tts-engine"

// Metrics holds the pipeline's metric instruments. All fields are safe for
// concurrent use; the underlying OTel types synchronise themselves.
type Metrics struct {
	// ExamplesAssembled counts successfully assembled training examples.
	ExamplesAssembled metric.Int64Counter

	// AlignmentSubstitutions counts alignment targets replaced with zeros
	// after a load failure or shape mismatch. A nonzero rate means the
	// alignment store disagrees with the audio/text pipeline.
	AlignmentSubstitutions metric.Int64Counter

	// BatchesCollated counts batches produced by the collator.
	BatchesCollated metric.Int64Counter
}

// NewMetrics creates a fully initialised Metrics using the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ExamplesAssembled, err = m.Int64Counter("sova.data.examples_assembled",
		metric.WithDescription("Training examples assembled."),
	); err != nil {
		return nil, err
	}
	if met.AlignmentSubstitutions, err = m.Int64Counter("sova.data.alignment_substitutions",
		metric.WithDescription("Alignment targets replaced with zero placeholders."),
	); err != nil {
		return nil, err
	}
	if met.BatchesCollated, err = m.Int64Counter("sova.data.batches_collated",
		metric.WithDescription("Batches produced by the collator."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns metrics built from the global OTel meter provider. The
// first call constructs them; construction errors surface as a panic since
// they indicate a programming error, not runtime state.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: building default metrics: " + err.Error())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
