package power

import (
	"errors"
	"fmt"
)

// ErrNoActivity is returned when an estimator receives an empty report.
var ErrNoActivity = errors.New("no activity to estimate")

// Result is the aggregated output of an estimator.
type Result struct {
	DynamicEnergy float64
	LeakagePower  float64
	TotalPower    float64
}

// Estimator turns activity counts into energy and power numbers.
type Estimator interface {
	Estimate(report ActivityReport) (Result, error)
}

// Collect hands the reports of all subnets to the estimator and sums the
// results.
func Collect(e Estimator, reports []ActivityReport) (Result, error) {
	var sum Result

	for _, r := range reports {
		if r.Cycles == 0 {
			return Result{}, fmt.Errorf("subnet %d: %w", r.Subnet, ErrNoActivity)
		}

		res, err := e.Estimate(r)
		if err != nil {
			return Result{}, fmt.Errorf("subnet %d: %w", r.Subnet, err)
		}

		sum.DynamicEnergy += res.DynamicEnergy
		sum.LeakagePower += res.LeakagePower
		sum.TotalPower += res.TotalPower
	}

	return sum, nil
}
