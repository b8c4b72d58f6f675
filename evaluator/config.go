package evaluator

import (
	"fmt"
	"time"

	"gomoku/searcher"
)

const (
	KindUniform = "uniform"
	KindRandom  = "random"
	KindRollout = "rollout"
	KindRemote  = "remote"
)

// Config selects and tunes the evaluator behind a search.
type Config struct {
	Kind      string        `mapstructure:"kind"`
	URL       string        `mapstructure:"url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Seed      uint64        `mapstructure:"seed"`
	Cutoff    int           `mapstructure:"cutoff"`
	BatchSize int           `mapstructure:"batch_size"`
	BatchWait time.Duration `mapstructure:"batch_wait"`
	Listen    string        `mapstructure:"listen"`
}

func (c Config) Validate() error {
	switch c.Kind {
	case KindUniform, KindRandom, KindRollout:
	case KindRemote:
		if c.URL == "" {
			return fmt.Errorf("evaluator url is required for kind %q", c.Kind)
		}
	default:
		return fmt.Errorf("unknown evaluator kind %q", c.Kind)
	}
	if c.Cutoff < 0 || c.BatchSize < 0 || c.BatchWait < 0 {
		return fmt.Errorf("cutoff, batch_size and batch_wait cannot be negative")
	}
	return nil
}

// New builds the evaluator described by cfg. Batching is added when
// cfg.BatchSize exceeds 1. The returned func releases it.
func New(cfg Config, runLength int) (searcher.Evaluator, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var e searcher.Evaluator
	var batch BatchFunc
	switch cfg.Kind {
	case KindUniform:
		e = Uniform{}
	case KindRandom:
		e = NewRandom(cfg.Seed)
	case KindRollout:
		e = NewRollout(cfg.Seed, cfg.Cutoff, runLength)
	case KindRemote:
		client := NewClient(cfg.URL, cfg.Timeout)
		e, batch = client, client.Batch
	}

	if cfg.BatchSize <= 1 {
		return e, func() {}, nil
	}
	if batch == nil {
		batch = Sequential(e)
	}
	b := NewBatcher(batch, cfg.BatchSize, cfg.BatchWait)
	return b, b.Close, nil
}
