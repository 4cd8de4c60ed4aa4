package rbac

// Resources and actions checked by routes and by actor resolution.
const (
	ResourceApproval  = "approval"
	ResourceRecord    = "record"
	ResourceProbation = "probation"

	ActionRead       = "read"
	ActionCreate     = "create"
	ActionTransition = "transition"
	ActionEdit       = "edit"

	// actor capabilities, not route permissions
	ActionAdminister        = "administer"
	ActionActAsHR           = "act_as_hr"
	ActionAdditionalApprove = "additional_approve"
)
