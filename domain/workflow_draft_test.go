package domain

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestStepListScan(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should scan database values back into the graph", func(t *testing.T) {
		steps := StepList{
			{ID: "start", Type: StepTypeInteraction, Name: "Fill in", Next: StepNext{Default: "approve"}},
			{ID: "approve", Type: StepTypeEvaluated, Name: "Approval",
				Next: StepNext{Default: "done", Alternate: "start"}},
			{ID: "done", Type: StepTypeChangeStatus, Name: "Done",
				Data: StepData{"status": "approved"}},
		}

		value, err := steps.Value()
		Expect(err).To(BeNil())

		scanned := StepList{}
		Expect(scanned.Scan(value)).To(BeNil())
		Expect(scanned).To(Equal(steps))

		scanned = StepList{}
		Expect(scanned.Scan([]byte(value.(string)))).To(BeNil())
		Expect(scanned).To(Equal(steps))
	})

	t.Run("should fail on unsupported source types", func(t *testing.T) {
		scanned := StepList{}
		Expect(scanned.Scan(12345)).ToNot(BeNil())
	})
}

func TestStepListFind(t *testing.T) {
	RegisterTestingT(t)

	steps := StepList{
		{ID: "start", Type: StepTypeInteraction},
		{ID: "notify", Type: StepTypeSendEmail},
	}

	t.Run("should find the start node", func(t *testing.T) {
		start, found := steps.FindStart()
		Expect(found).To(BeTrue())
		Expect(start.ID).To(Equal(StartStepID))
	})

	t.Run("should find nodes by id", func(t *testing.T) {
		node, found := steps.FindStep("notify")
		Expect(found).To(BeTrue())
		Expect(node.Type).To(Equal(StepTypeSendEmail))

		_, found = steps.FindStep("missing")
		Expect(found).To(BeFalse())
	})
}

func TestIsKnownStepType(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should accept the closed node type set", func(t *testing.T) {
		for _, tp := range []string{StepTypeChangeStatus, StepTypeSendEmail, StepTypeSwapWorkflow,
			StepTypeInteraction, StepTypeEvaluated, StepTypeConditional} {
			Expect(IsKnownStepType(tp)).To(BeTrue(), tp)
		}
		Expect(IsKnownStepType("circle")).To(BeFalse())
		Expect(IsKnownStepType("")).To(BeFalse())
	})
}

func TestWorkflowSnapshotScan(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should keep the draft version through the roundtrip", func(t *testing.T) {
		snapshot := WorkflowSnapshot{
			WorkflowDraftID: 100,
			Version:         3,
			Steps: StepList{
				{ID: "start", Type: StepTypeInteraction, Next: StepNext{Default: ""}},
			},
		}

		value, err := snapshot.Value()
		Expect(err).To(BeNil())

		scanned := WorkflowSnapshot{}
		Expect(scanned.Scan(value)).To(BeNil())
		Expect(scanned).To(Equal(snapshot))
	})
}
