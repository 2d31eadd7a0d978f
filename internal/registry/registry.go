// Package registry holds the static table of capturable dashboard reports.
package registry

import (
	"sort"

	"github.com/ziadkadry99/report-bot/internal/config"
)

// Report is one registered dashboard report.
type Report struct {
	Name string
	URL  string
	// RangeParams marks dashboards whose URL accepts from/to query parameters.
	RangeParams bool
}

// Registry maps report display names to their render targets. It is populated
// once at startup and read-only afterwards, so it is safe to share across
// goroutines without locking.
type Registry struct {
	reports map[string]Report
}

// New builds a registry from the configured reports.
func New(reports []config.ReportConfig) *Registry {
	m := make(map[string]Report, len(reports))
	for _, r := range reports {
		m[r.Name] = Report{
			Name:        r.Name,
			URL:         r.URL,
			RangeParams: r.RangeParams,
		}
	}
	return &Registry{reports: m}
}

// Lookup returns the report registered under name. The match is exact and
// case-sensitive; callers present the name exactly as registered.
func (r *Registry) Lookup(name string) (Report, bool) {
	rep, ok := r.reports[name]
	return rep, ok
}

// Names returns all registered report names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.reports))
	for name := range r.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
