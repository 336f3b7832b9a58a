package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// OAuth2 consent (requires a logged in Minecraft account)
	s.RegisterRouteHandler("GET "+RouteOAuth2Authorize, ChainMiddleware(s.AuthorizeHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteOAuth2Authorize, ChainMiddleware(s.ConsentHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// OAuth2 / API routes called by relying parties
	s.RegisterRouteHandler("POST "+RouteOAuth2Token, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteOAuth2Token, ChainMiddleware(noContent, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIProfile, ChainMiddleware(noContent, s.APIMiddleware()...))

	// Application settings
	s.RegisterRouteHandler("GET "+RouteSettingsApps, ChainMiddleware(s.ListAppsHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteSettingsApps, ChainMiddleware(s.CreateAppHandler(), s.APIMiddleware(s.RequireSession(), s.RequireJSON)...))
	s.RegisterRouteHandler("PUT "+RouteSettingsAppRedirectURIs, ChainMiddleware(s.UpdateRedirectURIsHandler(), s.APIMiddleware(s.RequireSession(), s.RequireJSON)...))
	s.RegisterRouteHandler("POST "+RouteSettingsAppSecret, ChainMiddleware(s.RegenerateSecretHandler(), s.APIMiddleware(s.RequireSession(), s.RequireJSON)...))
	s.RegisterRouteHandler("POST "+RouteSettingsAppDelete, ChainMiddleware(s.DeleteAppHandler(), s.APIMiddleware(s.RequireSession(), s.RequireJSON)...))

	if s.demo != nil {
		s.RegisterRouteHandler("GET "+RouteDemoLogin, ChainMiddleware(s.DemoLoginHandler(), s.APIMiddleware()...))
	}

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	if s.gatherer != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
