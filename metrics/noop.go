package metrics

import "time"

var _ Recorder = NoopMetrics{}

// NoopMetrics is used when metrics are disabled.
type NoopMetrics struct{}

func NewNoop() Recorder { return NoopMetrics{} }

func (NoopMetrics) RecordGrantCreated(string)                    {}
func (NoopMetrics) RecordDecision(string)                        {}
func (NoopMetrics) RecordExchange(string)                        {}
func (NoopMetrics) RecordTokenGenerationFailure(string)          {}
func (NoopMetrics) RecordProfileFetchFailure()                   {}
func (NoopMetrics) RecordLogin(bool)                             {}
func (NoopMetrics) RecordReaped(string, int64)                   {}
func (NoopMetrics) RecordHTTPRequest(string, int, time.Duration) {}
