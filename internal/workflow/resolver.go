package workflow

import (
	"strings"

	workflowerrors "go-hrflow/internal/workflow/errors"
)

const (
	AdditionalApprovalJurisdiction = "UK"
	AdditionalApprovalMinMagnitude = 5
)

// ResolveChain computes the ordered approval stages for a request. It has no
// side effects and may be called for previews before anything is persisted.
func ResolveChain(kind Kind, jurisdiction string, magnitude int) (StageResolution, error) {
	if !kind.IsValid() {
		return StageResolution{}, workflowerrors.ErrUnknownKind
	}
	if magnitude < 0 {
		return StageResolution{}, workflowerrors.ErrNegativeMagnitude
	}

	switch kind {
	case KindPerformanceReview, KindProbationReview:
		return StageResolution{
			Semantics: SemanticsParallelMerge,
			Stages: []StageSpec{
				{Role: RoleSelf, Required: true},
				{Role: RoleManager, Required: true},
			},
		}, nil
	case KindResignation:
		return sequential(RoleLineManager, RoleHR), nil
	}

	if needsAdditionalApprover(jurisdiction, magnitude) {
		return sequential(RoleLineManager, RoleAdditionalApprover, RoleHR), nil
	}
	return sequential(RoleLineManager, RoleHR), nil
}

func needsAdditionalApprover(jurisdiction string, magnitude int) bool {
	return strings.EqualFold(strings.TrimSpace(jurisdiction), AdditionalApprovalJurisdiction) &&
		magnitude >= AdditionalApprovalMinMagnitude
}

func sequential(roles ...Role) StageResolution {
	stages := make([]StageSpec, len(roles))
	for i, r := range roles {
		stages[i] = StageSpec{Role: r, Required: true}
	}
	return StageResolution{Semantics: SemanticsSequential, Stages: stages}
}

// Validate checks a resolution that did not come from ResolveChain, e.g. one
// loaded from storage.
func (r StageResolution) Validate() error {
	if len(r.Stages) == 0 {
		return workflowerrors.ErrEmptyResolution
	}
	if len(r.Stages) > 64 {
		return workflowerrors.ErrValidation
	}
	if r.Semantics != SemanticsSequential && r.Semantics != SemanticsParallelMerge {
		return workflowerrors.ErrValidation
	}
	for _, s := range r.Stages {
		if s.Required {
			return nil
		}
	}
	return workflowerrors.ErrNoRequiredStage
}
