// Package datadog implements a Datadog backend for the internal/metrics
// facade.
//
// Counters are buffered in memory, flushed on a ticker (default once per
// minute), and flushed one final time on Close(). Periodic flushing gives
// long flattening runs a real time series instead of a single spike at
// exit; the final flush covers short runs.
//
// Concurrency model:
//   - pipeline code can call IncCounter at any time
//   - Flush snapshots+resets buffers under a mutex, then submits out-of-lock
//   - the flush loop calls Flush() periodically; Close() stops the loop
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"auditflat/internal/metrics"
)

// Options controls backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to
	// "auditflat".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls how often buffered counters are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; unit tests
	// set them to avoid real network submission and nondeterministic
	// clocks/tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal surface needed to submit metrics. The
// SDK exposes a concrete *datadogV2.MetricsApi; depending on this interface
// instead lets tests install a fake submitter.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	// counters buffers samples keyed by metric name plus its sorted labels.
	counters map[counterKey]float64
}

type counterKey struct {
	name   string
	labels string // sorted "k:v" pairs joined with ","
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client and
// starts its periodic flush goroutine. Client construction itself does not
// hit the network; submission errors surface from Flush().
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "auditflat"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counters:   make(map[counterKey]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Call once at process shutdown.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	k := counterKey{name: name, labels: canonicalLabels(labels)}

	b.mu.Lock()
	b.counters[k] += delta
	b.mu.Unlock()
}

// canonicalLabels renders labels as sorted "k:v" pairs so the same label
// set always buffers under the same key.
func canonicalLabels(labels metrics.Labels) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+":"+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// snapshotAndReset grabs buffered counters and resets the buffer. Takes
// the lock internally and returns a detached map, so payload building and
// submission run out-of-lock.
func (b *Backend) snapshotAndReset() map[counterKey]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.counters
	b.counters = make(map[counterKey]float64)
	return s
}

// Flush submits buffered counters to Datadog and resets local buffers.
// Buffers reset even when submission fails, so a slow or broken intake
// never blocks the pipeline's writes.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if len(snap) == 0 {
		return nil
	}

	payload := datadogV2.MetricPayload{Series: b.buildSeries(snap, b.now().Unix())}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed
// timestamp. Pure (no locks, network, or clocks), so it unit-tests
// directly.
func (b *Backend) buildSeries(snap map[counterKey]float64, nowUnix int64) []datadogV2.MetricSeries {
	// Deterministic output order keeps payloads diffable in tests.
	keys := make([]counterKey, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].labels < keys[j].labels
	})

	series := make([]datadogV2.MetricSeries, 0, len(keys))
	for _, k := range keys {
		tags := make([]string, 0, len(b.baseTags)+4)
		tags = append(tags, b.baseTags...)
		if k.labels != "" {
			tags = append(tags, strings.Split(k.labels, ",")...)
		}

		series = append(series, datadogV2.MetricSeries{
			Metric: k.name,
			Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
			Points: []datadogV2.MetricPoint{{
				Timestamp: dd.PtrInt64(nowUnix),
				Value:     dd.PtrFloat64(snap[k]),
			}},
			Tags: tags,
		})
	}
	return series
}

// ParseTagsCSV splits a comma-separated tag list ("env:prod,team:data")
// into a slice, dropping empty entries.
func ParseTagsCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
