package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/types"
)

// MemDefinitions is an in-memory DefinitionStore for database-less CLI
// use and tests. Definitions vanish with the process.
type MemDefinitions struct {
	mu       sync.RWMutex
	kpis     map[string]types.KPI
	insights []types.Insight
}

// NewMemDefinitions creates an empty in-memory definition store.
func NewMemDefinitions() *MemDefinitions {
	return &MemDefinitions{kpis: make(map[string]types.KPI)}
}

func (m *MemDefinitions) UpsertKPI(_ context.Context, kpi types.KPI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kpis[kpi.Name] = kpi
	return nil
}

func (m *MemDefinitions) GetKPI(_ context.Context, name string) (*types.KPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kpi, ok := m.kpis[name]
	if !ok {
		return nil, nil
	}
	return &kpi, nil
}

func (m *MemDefinitions) ListKPIs(context.Context) ([]types.KPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.KPI, 0, len(m.kpis))
	for _, kpi := range m.kpis {
		out = append(out, kpi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemDefinitions) InsertInsight(_ context.Context, insight *types.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	insight.ID = int64(len(m.insights) + 1)
	m.insights = append(m.insights, *insight)
	return nil
}

// ListInsights returns all stored insights in insertion order.
func (m *MemDefinitions) ListInsights(context.Context) ([]types.Insight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Insight, len(m.insights))
	copy(out, m.insights)
	return out, nil
}
