package power

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EventEnergy is an estimator that charges a fixed energy to every counted
// event. Datapath energies are in pJ per bit. Arbitration and credit
// energies are in pJ per event. Leakage is in mW per router. Results are in
// J and W.
type EventEnergy struct {
	BufferWrite      float64 `yaml:"buffer_write"`
	BufferRead       float64 `yaml:"buffer_read"`
	Crossbar         float64 `yaml:"crossbar"`
	Link             float64 `yaml:"link"`
	VerticalLink     float64 `yaml:"vertical_link"`
	Arbitration      float64 `yaml:"arbitration"`
	Credit           float64 `yaml:"credit"`
	LeakagePerRouter float64 `yaml:"leakage_per_router"`
}

// DefaultEventEnergy returns coefficients in the range of a 45nm router.
func DefaultEventEnergy() *EventEnergy {
	return &EventEnergy{
		BufferWrite:      0.08,
		BufferRead:       0.06,
		Crossbar:         0.12,
		Link:             0.15,
		VerticalLink:     0.05,
		Arbitration:      0.5,
		Credit:           0.2,
		LeakagePerRouter: 1.5,
	}
}

// LoadEventEnergy reads coefficients from a YAML file over the defaults.
func LoadEventEnergy(path string) (*EventEnergy, error) {
	e := DefaultEventEnergy()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read energy model: %w", err)
	}

	if err := yaml.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("parse energy model %s: %w", path, err)
	}

	return e, nil
}

// Estimate implements Estimator.
func (e *EventEnergy) Estimate(report ActivityReport) (Result, error) {
	if report.Cycles == 0 || report.FrequencyGHz <= 0 {
		return Result{}, ErrNoActivity
	}

	total := report.Total()
	bits := float64(report.FlitWidth)

	var planarFlits uint64
	for _, c := range report.Channels {
		if !c.Vertical {
			planarFlits += c.Flits
		}
	}

	dynamic := bits * (float64(total.BufferWrites)*e.BufferWrite +
		float64(total.BufferReads)*e.BufferRead +
		float64(total.CrossbarTraversals)*e.Crossbar +
		float64(planarFlits)*e.Link +
		float64(report.VerticalFlits())*e.VerticalLink)

	arbitrations := total.VCArbitrations + total.SwitchArbitrations +
		total.VerticalRequests
	dynamic += float64(arbitrations)*e.Arbitration +
		float64(total.CreditsSent)*e.Credit

	energy := dynamic * 1e-12
	elapsed := float64(report.Cycles) / report.FrequencyGHz * 1e-9
	leakage := float64(len(report.Routers)) * e.LeakagePerRouter * 1e-3

	return Result{
		DynamicEnergy: energy,
		LeakagePower:  leakage,
		TotalPower:    energy/elapsed + leakage,
	}, nil
}
