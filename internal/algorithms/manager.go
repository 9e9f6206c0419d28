package algorithms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"ipcli/internal/algorithms/adjust"
	"ipcli/internal/algorithms/average"
	"ipcli/internal/algorithms/canny"
	"ipcli/internal/algorithms/histogram"
	"ipcli/internal/algorithms/params"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/safe"

	"github.com/samber/lo"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown operation")
	ErrMissingValue     = params.ErrMissingValue
)

// Operation is the common surface of everything the CLI can run.
type Operation interface {
	GetDefaultParameters() map[string]interface{}
	ValidateParameters(params map[string]interface{}) error
	GetName() string
}

// Algorithm is an operation that produces an image.
type Algorithm interface {
	Operation
	Process(input *safe.Mat, params map[string]interface{}) (*safe.Mat, error)
}

// ContextualAlgorithm extends Algorithm with context support for cancellation
type ContextualAlgorithm interface {
	Algorithm
	ProcessWithContext(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error)
}

// Reporter is an operation that produces text instead of an image.
type Reporter interface {
	Operation
	Report(input *safe.Mat, params map[string]interface{}) (string, error)
}

// ValueParser turns the raw -v argument into parameters.
type ValueParser interface {
	ParseValue(raw string) (map[string]interface{}, error)
	ValueHint() string
}

// OutputNamer decides where an algorithm's result is written. A
// non-empty OutputExtension is appended to the input path first.
type OutputNamer interface {
	OutputSuffix() string
	OutputExtension() string
}

type Manager struct {
	algorithms map[string]Operation
	parameters map[string]map[string]interface{}
	mu         sync.RWMutex
}

func NewManager(log logger.Logger) *Manager {
	manager := &Manager{
		algorithms: make(map[string]Operation),
		parameters: make(map[string]map[string]interface{}),
	}

	manager.registerAlgorithms(log)
	manager.initializeDefaultParameters()

	return manager
}

func (m *Manager) registerAlgorithms(log logger.Logger) {
	ops := []Operation{
		canny.NewProcessor(log),
		average.NewProcessor(),
		histogram.NewGrayscaleProcessor(),
		histogram.NewRGBProcessor(),
	}
	for _, p := range adjust.All() {
		ops = append(ops, p)
	}

	for _, op := range ops {
		m.algorithms[op.GetName()] = op
	}
}

func (m *Manager) initializeDefaultParameters() {
	for name, algorithm := range m.algorithms {
		m.parameters[name] = algorithm.GetDefaultParameters()
	}
}

func (m *Manager) GetParameters(algorithm string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, exists := m.parameters[algorithm]; exists {
		return params.Merge(p, nil)
	}

	return make(map[string]interface{})
}

// SetParameter replaces the stored default of one parameter.
func (m *Manager) SetParameter(algorithm, name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, exists := m.parameters[algorithm]; exists {
		p[name] = value
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
}

func (m *Manager) GetAlgorithm(name string) (Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if algorithm, exists := m.algorithms[name]; exists {
		return algorithm, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

// GetAvailableAlgorithms returns the registered names in sorted order.
func (m *Manager) GetAvailableAlgorithms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := lo.Keys(m.algorithms)
	slices.Sort(names)
	return names
}

// ValueHint describes the -v argument of name, or is empty when the
// operation takes none.
func (m *Manager) ValueHint(name string) string {
	op, err := m.GetAlgorithm(name)
	if err != nil {
		return ""
	}
	if vp, ok := op.(ValueParser); ok {
		return vp.ValueHint()
	}
	return ""
}

// ResolveParameters merges the stored defaults of name, the parsed raw
// value and overrides, in that order, and validates the result.
func (m *Manager) ResolveParameters(name, rawValue string, overrides map[string]interface{}) (map[string]interface{}, error) {
	op, err := m.GetAlgorithm(name)
	if err != nil {
		return nil, err
	}

	resolved := m.GetParameters(name)

	if vp, ok := op.(ValueParser); ok {
		parsed, err := vp.ParseValue(rawValue)
		if err != nil {
			return nil, err
		}
		resolved = params.Merge(resolved, parsed)
	}

	resolved = params.Merge(resolved, overrides)

	if err := op.ValidateParameters(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}
