package core

import (
	"errors"
	"fmt"
	"math"
)

// MaxChannels is the widest channel layout the processors in this module handle.
const MaxChannels = 2

var (
	// ErrInvalidSampleRate is returned for zero, negative or non-finite sample rates.
	ErrInvalidSampleRate = errors.New("sample rate must be > 0 and finite")
	// ErrInvalidBlockSize is returned for non-positive block sizes.
	ErrInvalidBlockSize = errors.New("block size must be > 0")
	// ErrInvalidChannels is returned for channel counts outside [1, MaxChannels].
	ErrInvalidChannels = errors.New("channel count out of range")
)

// ProcessorConfig defines the stream settings a processor is prepared with.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns a stereo 48 kHz configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
		Channels:   2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the channel count.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 && channels <= MaxChannels {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether cfg can be used to allocate processing state.
func (cfg ProcessorConfig) Validate() error {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, cfg.BlockSize)
	}
	if cfg.Channels < 1 || cfg.Channels > MaxChannels {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, cfg.Channels)
	}
	return nil
}
