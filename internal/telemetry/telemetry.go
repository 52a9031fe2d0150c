// Package telemetry builds the in-process OpenTelemetry pipeline of the transfersim command.
//
// Metrics are collected on demand through a manual reader and finished spans are kept in memory,
// so a Snapshot can be printed at the end of the command without any external backend.
package telemetry

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

// Providers holds the SDK providers and the readers a Snapshot is taken from.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource

	serviceName string
	reader      *sdkmetric.ManualReader
	spans       *tracetest.SpanRecorder
}

// New creates tracer and meter providers for serviceName. They are not installed globally, see Install.
func New(serviceName string) *Providers {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	reader := sdkmetric.NewManualReader()
	spans := tracetest.NewSpanRecorder()

	return &Providers{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(spans),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		),
		Resource:    res,
		serviceName: serviceName,
		reader:      reader,
		spans:       spans,
	}
}

// Install sets the providers and the W3C trace context propagator as the OpenTelemetry globals.
func (p *Providers) Install() {
	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// Tracer returns the tracer named after the service.
func (p *Providers) Tracer() trace.Tracer {
	return p.TracerProvider.Tracer(p.serviceName)
}

// Meter returns the meter named after the service.
func (p *Providers) Meter() metric.Meter {
	return p.MeterProvider.Meter(p.serviceName)
}

// MetricPoint is one data point of a collected metric.
// For histograms Value is the sum of all recordings and Count their number.
type MetricPoint struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Value      float64           `json:"value"`
	Count      uint64            `json:"count,omitempty"`
}

// SpanSummary is one finished span.
type SpanSummary struct {
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	DurationMS float64           `json:"duration_ms"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Snapshot is everything collected so far.
type Snapshot struct {
	Metrics []MetricPoint `json:"metrics"`
	Spans   []SpanSummary `json:"spans"`
}

// Snapshot collects all metrics and lists the finished spans.
// Metric points are sorted by name and then by attributes.
func (p *Providers) Snapshot(ctx context.Context) (Snapshot, error) {
	var resourceMetrics metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &resourceMetrics); err != nil {
		return Snapshot{}, fmt.Errorf("collecting metrics: %w", err)
	}

	snapshot := Snapshot{Metrics: []MetricPoint{}, Spans: []SpanSummary{}}

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			snapshot.Metrics = append(snapshot.Metrics, metricPoints(m)...)
		}
	}

	sort.SliceStable(snapshot.Metrics, func(i, j int) bool {
		if snapshot.Metrics[i].Name != snapshot.Metrics[j].Name {
			return snapshot.Metrics[i].Name < snapshot.Metrics[j].Name
		}

		return fmt.Sprint(snapshot.Metrics[i].Attributes) < fmt.Sprint(snapshot.Metrics[j].Attributes)
	})

	for _, span := range p.spans.Ended() {
		snapshot.Spans = append(snapshot.Spans, SpanSummary{
			Name:       span.Name(),
			Status:     span.Status().Code.String(),
			DurationMS: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000,
			Attributes: attributeMap(span.Attributes()),
		})
	}

	return snapshot, nil
}

// Value returns the value of the first point named name whose attributes contain all of attrs.
func (s Snapshot) Value(name string, attrs map[string]string) (float64, bool) {
	for _, point := range s.Metrics {
		if point.Name != name {
			continue
		}

		matches := true
		for k, v := range attrs {
			if point.Attributes[k] != v {
				matches = false
				break
			}
		}

		if matches {
			return point.Value, true
		}
	}

	return 0, false
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return multierr.Combine(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}

func metricPoints(m metricdata.Metrics) []MetricPoint {
	var points []MetricPoint

	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			points = append(points, MetricPoint{
				Name: m.Name, Kind: "counter", Attributes: attributeMap(dp.Attributes.ToSlice()), Value: float64(dp.Value),
			})
		}
	case metricdata.Sum[float64]:
		for _, dp := range data.DataPoints {
			points = append(points, MetricPoint{
				Name: m.Name, Kind: "counter", Attributes: attributeMap(dp.Attributes.ToSlice()), Value: dp.Value,
			})
		}
	case metricdata.Gauge[float64]:
		for _, dp := range data.DataPoints {
			points = append(points, MetricPoint{
				Name: m.Name, Kind: "gauge", Attributes: attributeMap(dp.Attributes.ToSlice()), Value: dp.Value,
			})
		}
	case metricdata.Gauge[int64]:
		for _, dp := range data.DataPoints {
			points = append(points, MetricPoint{
				Name: m.Name, Kind: "gauge", Attributes: attributeMap(dp.Attributes.ToSlice()), Value: float64(dp.Value),
			})
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			points = append(points, MetricPoint{
				Name: m.Name, Kind: "histogram", Attributes: attributeMap(dp.Attributes.ToSlice()), Value: dp.Sum, Count: dp.Count,
			})
		}
	}

	return points
}

func attributeMap(attrs []attribute.KeyValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}

	result := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		result[string(kv.Key)] = kv.Value.Emit()
	}

	return result
}
