package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin    = "/login"
	RouteCallback = "/oauth2callback"
	RouteLogout   = "/logout"

	// API Routes
	RouteAPIMe     = "/api/me"
	RouteAPIEmails = "/api/emails"
	RouteAPIAll    = "/api/{path...}"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Pages
	RouteHome      = "/"
	RouteDashboard = "/dashboard.html"

	// Static Asset Routes (patterns)
	RouteStatic = "/{path...}"
)
