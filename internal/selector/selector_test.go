package selector_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/selector"
)

func TestSelector(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "selector suite")
}

func item(id string, skills []string, disc, diff float64, active bool) model.Item {
	return model.Item{
		ID:         id,
		SkillAreas: skills,
		Active:     active,
		Parameters: model.ItemParameters{Discrimination: disc, Difficulty: diff},
	}
}

var _ = Describe("Select", func() {
	It("picks the item with the highest information at theta", func() {
		candidates := []model.Item{
			item("easy", nil, 1.0, -3.0, true),
			item("matched", nil, 1.5, 0.0, true),
			item("hard", nil, 1.0, 3.0, true),
		}
		got, err := selector.Select(0.0, candidates, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("matched"))
	})

	It("excludes already-answered items", func() {
		candidates := []model.Item{
			item("a", nil, 1.5, 0.0, true),
			item("b", nil, 1.0, 0.0, true),
		}
		got, err := selector.Select(0.0, candidates, nil, map[string]bool{"a": true})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("b"))
	})

	It("excludes inactive items", func() {
		candidates := []model.Item{
			item("inactive", nil, 5.0, 0.0, false),
			item("active", nil, 0.5, 0.0, true),
		}
		got, err := selector.Select(0.0, candidates, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("active"))
	})

	It("treats an empty skill-area filter as no filter at all", func() {
		candidates := []model.Item{
			item("grammar", []string{"grammar"}, 1.2, 0.0, true),
		}
		got, err := selector.Select(0.0, candidates, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("grammar"))
	})

	It("applies a non-empty skill-area filter by overlap", func() {
		candidates := []model.Item{
			item("grammar", []string{"grammar"}, 1.5, 0.0, true),
			item("vocab", []string{"vocabulary"}, 2.0, 0.0, true),
		}
		got, err := selector.Select(0.0, candidates, []string{"grammar"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("grammar"))
	})

	It("fails with NoEligibleItems when nothing qualifies", func() {
		candidates := []model.Item{
			item("answered", nil, 1.0, 0.0, true),
		}
		_, err := selector.Select(0.0, candidates, nil, map[string]bool{"answered": true})
		Expect(domainerr.Is(err, domainerr.NoEligibleItems)).To(BeTrue())
	})

	It("breaks ties deterministically on first-encountered order", func() {
		candidates := []model.Item{
			item("first", nil, 1.0, 0.0, true),
			item("second", nil, 1.0, 0.0, true),
		}
		got, err := selector.Select(0.0, candidates, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("first"))
	})
})
