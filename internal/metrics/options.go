// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithConstLabels adds labels to every metric, e.g. the cohort being ranked.
// The map is copied.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) == 0 {
			return
		}
		m.constLabels = make(map[string]string, len(labels))
		for k, v := range labels {
			m.constLabels[k] = v
		}
	}
}
