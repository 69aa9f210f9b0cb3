package flowdraft_test

import (
	"testing"

	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/flowdraft"

	. "github.com/onsi/gomega"
)

func TestValidateSteps(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should accept a runnable graph", func(t *testing.T) {
		steps := domain.StepList{
			{ID: "start", Type: domain.StepTypeInteraction, Next: domain.StepNext{Default: "review"}},
			{ID: "review", Type: domain.StepTypeEvaluated,
				Next: domain.StepNext{Default: "close", Alternate: "start"}},
			{ID: "close", Type: domain.StepTypeChangeStatus,
				Data: domain.StepData{"status": "closed"}},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(BeNil())
	})

	t.Run("should require a start node", func(t *testing.T) {
		steps := domain.StepList{
			{ID: "review", Type: domain.StepTypeEvaluated},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrInvalidWorkflow))
	})

	t.Run("should reject duplicated or empty node ids", func(t *testing.T) {
		steps := domain.StepList{
			{ID: "start", Type: domain.StepTypeInteraction},
			{ID: "start", Type: domain.StepTypeEvaluated},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrUnknownStep))

		steps = domain.StepList{
			{ID: "start", Type: domain.StepTypeInteraction},
			{ID: "", Type: domain.StepTypeEvaluated},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrUnknownStep))
	})

	t.Run("should reject unknown node types", func(t *testing.T) {
		steps := domain.StepList{
			{ID: "start", Type: "circle"},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrUnknownStepType))
	})

	t.Run("should reject dangling edges", func(t *testing.T) {
		steps := domain.StepList{
			{ID: "start", Type: domain.StepTypeInteraction, Next: domain.StepNext{Default: "missing"}},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrUnknownStep))

		steps = domain.StepList{
			{ID: "start", Type: domain.StepTypeConditional, Next: domain.StepNext{Default: "start", Alternate: "missing"}},
		}
		Expect(flowdraft.ValidateSteps(steps)).To(Equal(bizerror.ErrUnknownStep))
	})
}
