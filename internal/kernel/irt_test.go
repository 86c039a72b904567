package kernel_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/kernel"
)

func TestKernel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "kernel suite")
}

var _ = Describe("Probability", func() {
	It("returns 0.5 when theta equals difficulty", func() {
		p := kernel.Probability(1.0, kernel.ItemParams{Discrimination: 1.5, Difficulty: 1.0})
		Expect(p).To(BeNumerically("~", 0.5, 1e-9))
	})

	It("approaches 1 for a very able test-taker on an easy item", func() {
		p := kernel.Probability(20, kernel.ItemParams{Discrimination: 1.0, Difficulty: -5})
		Expect(p).To(BeNumerically(">", 0.999))
	})

	It("approaches 0 for a very unable test-taker on a hard item", func() {
		p := kernel.Probability(-20, kernel.ItemParams{Discrimination: 1.0, Difficulty: 5})
		Expect(p).To(BeNumerically("<", 0.001))
	})
})

var _ = Describe("Information", func() {
	It("is maximal near theta == difficulty", func() {
		params := kernel.ItemParams{Discrimination: 1.2, Difficulty: 0.0}
		atMode, err := kernel.Information(0.0, params)
		Expect(err).NotTo(HaveOccurred())
		farOut, err := kernel.Information(5.0, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(atMode).To(BeNumerically(">", farOut))
	})

	It("rejects non-finite discrimination", func() {
		_, err := kernel.Information(0.0, kernel.ItemParams{Discrimination: math.NaN(), Difficulty: 0})
		Expect(domainerr.Is(err, domainerr.InvalidInput)).To(BeTrue())
	})

	It("rejects non-finite difficulty", func() {
		_, err := kernel.Information(0.0, kernel.ItemParams{Discrimination: 1, Difficulty: math.Inf(1)})
		Expect(domainerr.Is(err, domainerr.InvalidInput)).To(BeTrue())
	})
})

var _ = Describe("EstimateAbility", func() {
	It("returns the prior with max SE when there are no responses", func() {
		est, err := kernel.EstimateAbility(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Theta).To(Equal(0.0))
		Expect(est.StandardError).To(Equal(2.0))
	})

	It("moves ability upward after a run of correct answers on calibrated items", func() {
		obs := []kernel.Observation{
			{Score: 1, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: 0.0}},
			{Score: 1, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: 0.5}},
			{Score: 1, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: 1.0}},
		}
		est, err := kernel.EstimateAbility(obs)
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Theta).To(BeNumerically(">", 0))
		Expect(est.StandardError).To(BeNumerically("<", 2.0))
	})

	It("moves ability downward after a run of incorrect answers", func() {
		obs := []kernel.Observation{
			{Score: 0, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: 0.0}},
			{Score: 0, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: -0.5}},
			{Score: 0, Params: kernel.ItemParams{Discrimination: 1.2, Difficulty: -1.0}},
		}
		est, err := kernel.EstimateAbility(obs)
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Theta).To(BeNumerically("<", 0))
	})

	It("clips theta into [-10, 10]", func() {
		var obs []kernel.Observation
		for i := 0; i < 40; i++ {
			obs = append(obs, kernel.Observation{Score: 1, Params: kernel.ItemParams{Discrimination: 3.0, Difficulty: 8.0}})
		}
		est, err := kernel.EstimateAbility(obs)
		Expect(err).NotTo(HaveOccurred())
		Expect(est.Theta).To(BeNumerically("<=", 10.0))
		Expect(est.Theta).To(BeNumerically(">=", -10.0))
	})

	It("clips standard error into [0.01, 2.0]", func() {
		var obs []kernel.Observation
		for i := 0; i < 100; i++ {
			obs = append(obs, kernel.Observation{Score: 1, Params: kernel.ItemParams{Discrimination: 4.0, Difficulty: 0.0}})
		}
		est, err := kernel.EstimateAbility(obs)
		Expect(err).NotTo(HaveOccurred())
		Expect(est.StandardError).To(BeNumerically(">=", 0.01))
		Expect(est.StandardError).To(BeNumerically("<=", 2.0))
	})

	It("is deterministic for identical input", func() {
		obs := []kernel.Observation{
			{Score: 1, Params: kernel.ItemParams{Discrimination: 1.1, Difficulty: -0.3}},
			{Score: 0, Params: kernel.ItemParams{Discrimination: 0.9, Difficulty: 0.4}},
		}
		est1, _ := kernel.EstimateAbility(obs)
		est2, _ := kernel.EstimateAbility(obs)
		Expect(est1.Theta).To(Equal(est2.Theta))
		Expect(est1.StandardError).To(Equal(est2.StandardError))
	})

	It("rejects non-finite item parameters", func() {
		_, err := kernel.EstimateAbility([]kernel.Observation{
			{Score: 1, Params: kernel.ItemParams{Discrimination: math.NaN(), Difficulty: 0}},
		})
		Expect(domainerr.Is(err, domainerr.InvalidInput)).To(BeTrue())
	})
})

var _ = Describe("EstimateAbilityFromParallel", func() {
	It("fails InvalidInput on a length mismatch", func() {
		_, err := kernel.EstimateAbilityFromParallel(
			[]float64{1, 0},
			[]kernel.ItemParams{{Discrimination: 1, Difficulty: 0}},
		)
		Expect(domainerr.Is(err, domainerr.InvalidInput)).To(BeTrue())
	})
})
