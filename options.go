package graphgo

import (
	"runtime"

	"github.com/hupe1980/graphgo/partition"
	"github.com/hupe1980/graphgo/pcoll"
)

type options struct {
	numPartitions    int
	strategy         partition.Strategy
	executor         *pcoll.Executor
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures graph construction behavior.
type Option func(*options)

// WithNumPartitions configures how many edge partitions the graph is cut
// into. Vertex collections use the same count. Defaults to the number of
// CPUs. A non-positive value is rejected at construction time.
func WithNumPartitions(n int) Option {
	return func(o *options) {
		o.numPartitions = n
	}
}

// WithPartitionStrategy configures the edge partition strategy.
//
// If nil is passed, partition.Hash() is used.
func WithPartitionStrategy(s partition.Strategy) Option {
	return func(o *options) {
		if s == nil {
			s = partition.Hash()
		}
		o.strategy = s
	}
}

// WithExecutor configures the substrate executor evaluating partitions.
// Graphs built with the same executor share its resource controller.
//
// If nil is passed, the process-wide default executor is used.
func WithExecutor(e *pcoll.Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}

// WithMetricsCollector configures metrics collection.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
//
// If nil is passed, NoopLogger() is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func resolveOptions(opts ...Option) *options {
	o := &options{
		numPartitions:    runtime.NumCPU(),
		strategy:         partition.Hash(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.executor == nil {
		o.executor = pcoll.DefaultExecutor()
	}
	return o
}
