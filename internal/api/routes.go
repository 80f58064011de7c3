// Package api holds the REST handlers of the marketplace.
package api

// Init registers every route on the web server; webserver.Init must run first.
func Init() {
	registerCarRoutes()
	registerAdminCarRoutes()
	registerAuthRoutes()
	registerBookmarkRoutes()
	registerActivityRoutes()
	registerPriceAlertRoutes()
	registerSiteRoutes()
	registerDashboardRoutes()
}
