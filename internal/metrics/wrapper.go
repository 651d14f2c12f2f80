package metrics

// Adapter methods satisfying the MetricsInterface of each consuming
// package, so domain code depends on small local interfaces instead
// of prometheus types.

func (m *Metrics) PredictionsInc() { m.PredictionsTotal.Inc() }

func (m *Metrics) CycleFailuresInc() { m.CycleFailures.Inc() }

func (m *Metrics) ClassifierErrorsInc() { m.ClassifierErrors.Inc() }

func (m *Metrics) CycleDurationObserve(seconds float64) { m.CycleDuration.Observe(seconds) }

func (m *Metrics) LastConfidenceSet(v float64) { m.LastConfidence.Set(v) }

func (m *Metrics) DrawsAnalyzedSet(v float64) { m.DrawsAnalyzed.Set(v) }

func (m *Metrics) FetchRetriesInc() { m.FetchRetries.Inc() }

func (m *Metrics) FetchFailuresInc() { m.FetchFailures.Inc() }

func (m *Metrics) HTTPDurationObserve(path string, seconds float64) {
	m.HTTPDuration.WithLabelValues(path).Observe(seconds)
}

func (m *Metrics) WSClientsAdd(delta float64) { m.WSClients.Add(delta) }

func (m *Metrics) WSBroadcastsInc() { m.WSBroadcasts.Inc() }
