package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// OAuth2
	RouteOAuth2Authorize = "/oauth2/authorize"
	RouteOAuth2Token     = "/oauth2/token"

	// API
	RouteAPIProfile = "/api/v2/profile"

	// Application settings (owner only)
	RouteSettingsApps            = "/settings/apps"
	RouteSettingsAppRedirectURIs = "/settings/apps/{id}/redirect-uris"
	RouteSettingsAppSecret       = "/settings/apps/{id}/secret"
	RouteSettingsAppDelete       = "/settings/apps/{id}/delete"

	// Demo relying party
	RouteDemoLogin = "/demo/login"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
