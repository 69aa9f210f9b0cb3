package state_test

import (
	"activityflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		stateMachine = state.NewStateMachine(
			state.State{Name: "created", Order: 1},
			state.State{Name: "processing", Order: 2},
			state.State{Name: "finished", Order: 3},
		)
	})

	Describe("FindState", func() {
		It("should find states by name", func() {
			s, found := stateMachine.FindState("processing")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "processing", Order: 2}))

			_, found = stateMachine.FindState("missing")
			Expect(found).To(BeFalse())
		})
	})

	Describe("CanTransit", func() {
		It("should allow moving to the direct successor only", func() {
			Expect(stateMachine.CanTransit("created", "processing")).To(BeTrue())
			Expect(stateMachine.CanTransit("processing", "finished")).To(BeTrue())

			Expect(stateMachine.CanTransit("created", "finished")).To(BeFalse())
			Expect(stateMachine.CanTransit("processing", "created")).To(BeFalse())
			Expect(stateMachine.CanTransit("finished", "finished")).To(BeFalse())
		})
		It("should reject unknown states", func() {
			Expect(stateMachine.CanTransit("created", "unknown")).To(BeFalse())
			Expect(stateMachine.CanTransit("unknown", "created")).To(BeFalse())
		})
	})

	Describe("NextState", func() {
		It("should return the direct successor", func() {
			next, found := stateMachine.NextState("created")
			Expect(found).To(BeTrue())
			Expect(next.Name).To(Equal("processing"))
		})
		It("should not return a successor of the last state", func() {
			_, found := stateMachine.NextState("finished")
			Expect(found).To(BeFalse())
		})
	})
})
