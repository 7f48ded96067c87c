package power

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Collect", func() {
	var (
		mockCtrl  *gomock.Controller
		estimator *MockEstimator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		estimator = NewMockEstimator(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should sum the results of all subnets", func() {
		reports := []ActivityReport{
			{Subnet: 0, Cycles: 10},
			{Subnet: 1, Cycles: 10},
		}

		estimator.EXPECT().
			Estimate(gomock.Any()).
			Return(Result{DynamicEnergy: 1, LeakagePower: 2, TotalPower: 3}, nil).
			Times(2)

		res, err := Collect(estimator, reports)

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(Result{
			DynamicEnergy: 2, LeakagePower: 4, TotalPower: 6,
		}))
	})

	It("should reject an empty report", func() {
		_, err := Collect(estimator, []ActivityReport{{Subnet: 1}})

		Expect(errors.Is(err, ErrNoActivity)).To(BeTrue())
	})

	It("should forward estimator errors", func() {
		estimator.EXPECT().
			Estimate(gomock.Any()).
			Return(Result{}, errors.New("model missing"))

		_, err := Collect(estimator, []ActivityReport{{Cycles: 1}})

		Expect(err).To(MatchError(ContainSubstring("model missing")))
	})
})

var _ = Describe("ActivityReport", func() {
	It("should sum router and vertical activity", func() {
		r := ActivityReport{
			Routers: []RouterActivity{
				{BufferWrites: 2, CrossbarTraversals: 1},
				{BufferWrites: 3, VerticalGrants: 1},
			},
			Channels: []ChannelActivity{
				{Flits: 4},
				{Flits: 5, Vertical: true},
			},
		}

		total := r.Total()

		Expect(total.BufferWrites).To(Equal(uint64(5)))
		Expect(total.CrossbarTraversals).To(Equal(uint64(1)))
		Expect(total.VerticalGrants).To(Equal(uint64(1)))
		Expect(r.VerticalFlits()).To(Equal(uint64(5)))
	})
})
