package telemetry

// Span names.
const (
	SpanPlanRoute      = "routing.plan"
	SpanSessionCommand = "navigation.command"
	SpanLoadGraph      = "campus.load_graph"
)

// Span attribute keys.
const (
	AttrFrom      = "campus.from"
	AttrTo        = "campus.to"
	AttrSessionID = "navigation.session_id"
	AttrCommand   = "navigation.command"
	AttrExpanded  = "routing.expanded"
)
