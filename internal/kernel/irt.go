// Package kernel implements the two-parameter logistic (2PL) IRT model:
// item information and Maximum A Posteriori ability estimation via
// Newton-Raphson under a standard-normal prior.
package kernel

import (
	"math"

	"github.com/langtest/catengine/internal/domainerr"
)

const (
	logitClip        = 30.0
	thetaClip        = 10.0
	seMin            = 0.01
	seMax            = 2.0
	priorMean        = 0.0
	priorVariance    = 1.0
	maxIterations    = 50
	convergenceDelta = 1e-6
	defaultSE        = 2.0
)

// ItemParams is the subset of an item's IRT parameters the kernel needs.
type ItemParams struct {
	Discrimination float64
	Difficulty     float64
}

// Observation pairs a scored response with the item it answered.
type Observation struct {
	Score  float64 // 0.0 or 1.0
	Params ItemParams
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Probability computes P(theta) for the 2PL model in the numerically
// stable branch.
func Probability(theta float64, p ItemParams) float64 {
	z := clip(p.Discrimination*(theta-p.Difficulty), -logitClip, logitClip)
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// Information computes Fisher information I(theta; a,b) = a^2 * P * (1-P).
func Information(theta float64, p ItemParams) (float64, error) {
	if err := validateParams(p); err != nil {
		return 0, err
	}
	prob := Probability(theta, p)
	info := p.Discrimination * p.Discrimination * prob * (1 - prob)
	if info < 0 {
		info = 0
	}
	return info, nil
}

func validateParams(p ItemParams) error {
	if math.IsNaN(p.Discrimination) || math.IsInf(p.Discrimination, 0) {
		return domainerr.New(domainerr.InvalidInput, "non-finite discrimination parameter")
	}
	if math.IsNaN(p.Difficulty) || math.IsInf(p.Difficulty, 0) {
		return domainerr.New(domainerr.InvalidInput, "non-finite difficulty parameter")
	}
	return nil
}

// Estimate is the result of MAP ability estimation.
type Estimate struct {
	Theta         float64
	StandardError float64
}

// EstimateAbility performs MAP estimation over a set of observations via
// Newton-Raphson under an N(0,1) prior.
//
// Edge cases: an empty observation set returns (theta=0, SE=2.0). Non-finite
// parameters fail with domainerr.InvalidInput.
func EstimateAbility(observations []Observation) (Estimate, error) {
	if len(observations) == 0 {
		return Estimate{Theta: 0.0, StandardError: defaultSE}, nil
	}

	for _, obs := range observations {
		if err := validateParams(obs.Params); err != nil {
			return Estimate{}, err
		}
	}

	theta := priorMean

	for iter := 0; iter < maxIterations; iter++ {
		firstDeriv, secondDeriv := logLikelihoodDerivatives(theta, observations)

		// Prior contribution: N(0,1) log-density derivatives.
		firstDeriv += -(theta - priorMean) / priorVariance
		secondDeriv += -1.0 / priorVariance

		if secondDeriv >= 0 {
			break
		}

		newTheta := clip(theta-firstDeriv/secondDeriv, -thetaClip, thetaClip)
		delta := newTheta - theta
		theta = newTheta
		if math.Abs(delta) < convergenceDelta {
			break
		}
	}

	_, secondDeriv := logLikelihoodDerivatives(theta, observations)
	secondDeriv += -1.0 / priorVariance

	totalInformation := -secondDeriv

	se := defaultSE
	if totalInformation > 0 {
		se = clip(1.0/math.Sqrt(totalInformation), seMin, seMax)
	}

	return Estimate{Theta: theta, StandardError: se}, nil
}

// EstimateAbilityFromParallel mirrors the original adapter's signature:
// parallel scores/items slices rather than pre-zipped Observations. It
// exists for callers that hold responses and items as separate lists and
// must enforce the length-mismatch edge case before zipping.
func EstimateAbilityFromParallel(scores []float64, items []ItemParams) (Estimate, error) {
	if len(scores) != len(items) {
		return Estimate{}, domainerr.New(domainerr.InvalidInput, "responses and items length mismatch")
	}
	observations := make([]Observation, len(scores))
	for i := range scores {
		observations[i] = Observation{Score: scores[i], Params: items[i]}
	}
	return EstimateAbility(observations)
}

// logLikelihoodDerivatives computes the first and second derivatives of the
// response log-likelihood (excluding the prior term) at theta.
func logLikelihoodDerivatives(theta float64, observations []Observation) (first, second float64) {
	for _, obs := range observations {
		a := obs.Params.Discrimination
		p := Probability(theta, obs.Params)
		q := 1 - p

		first += a * (obs.Score - p)
		second -= a * a * p * q
	}
	return first, second
}
