package nodes

// Graph node names; these surface in traces and callback logs.
const (
	NodeResolveReferences = "resolve_references"
	NodeParseIntent       = "parse_intent"
	NodeValidatePlan      = "validate_plan"
	NodeResolveVessels    = "resolve_vessels"
	NodeTrajectory        = "trajectory_pipeline"
	NodeLoitering         = "loitering_pipeline"
	NodeResponseBuilder   = "response_builder"
)
