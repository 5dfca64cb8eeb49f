package commands

import (
	"github.com/pkg/errors"
	"github.com/zeu5/tictactoe-rl/policies"
)

// TrainConfig holds the parameters of a self-play training phase
type TrainConfig struct {
	Episodes int
	EpsilonA float64
	EpsilonB float64
	Alpha    float64
	// episodes per point of the outcome curve
	Window int
	// learning curve PNG, no plot when empty
	PlotPath string
	// JSONL file of episode traces, not recorded when empty
	TracesPath string
}

func DefaultTrainConfig() *TrainConfig {
	return &TrainConfig{
		Episodes: 1000,
		EpsilonA: policies.DefaultEpsilon,
		EpsilonB: policies.DefaultEpsilon,
		Alpha:    policies.DefaultAlpha,
		Window:   100,
	}
}

func (c *TrainConfig) Validate() error {
	if c.Episodes < 0 {
		return errors.Errorf("episodes must not be negative, got %d", c.Episodes)
	}
	if err := validateEpsilon("epsilon-a", c.EpsilonA); err != nil {
		return err
	}
	if err := validateEpsilon("epsilon-b", c.EpsilonB); err != nil {
		return err
	}
	if err := validateAlpha(c.Alpha); err != nil {
		return err
	}
	if c.Window <= 0 {
		return errors.Errorf("window must be positive, got %d", c.Window)
	}
	return nil
}

func validateEpsilon(name string, epsilon float64) error {
	if epsilon < 0 || epsilon > 1 {
		return errors.Errorf("%s must be in [0, 1], got %v", name, epsilon)
	}
	return nil
}

func validateAlpha(alpha float64) error {
	if alpha <= 0 || alpha > 1 {
		return errors.Errorf("alpha must be in (0, 1], got %v", alpha)
	}
	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return errors.Errorf("invalid port %d", port)
	}
	return nil
}
