package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Every /v1 route sits behind the bearer-token gate; the planner has no
// anonymous surface.
func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/players/search", RequireAuth(verifier, http.HandlerFunc(handler.SearchPlayers)))
	mux.Handle("GET /v1/players/{playerID}", RequireAuth(verifier, http.HandlerFunc(handler.GetPlayer)))
	mux.Handle("GET /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.GetTeam)))

	mux.Handle("POST /v1/fixtures/load", RequireAuth(verifier, http.HandlerFunc(handler.LoadFixtures)))
	mux.Handle("GET /v1/fixtures", RequireAuth(verifier, http.HandlerFunc(handler.ListFixtures)))
	mux.Handle("PUT /v1/fixtures/{matchID}/delivery-date", RequireAuth(verifier, http.HandlerFunc(handler.SetDeliveryDate)))

	mux.Handle("GET /v1/calendar", RequireAuth(verifier, http.HandlerFunc(handler.GetCalendar)))
	mux.Handle("GET /v1/gantt", RequireAuth(verifier, http.HandlerFunc(handler.GetGantt)))
	mux.Handle("POST /v1/gantt/reassign", RequireAuth(verifier, http.HandlerFunc(handler.ReassignTask)))

	mux.Handle("PUT /v1/assignments/report", RequireAuth(verifier, http.HandlerFunc(handler.SetReportOwner)))
	mux.Handle("PUT /v1/assignments/video", RequireAuth(verifier, http.HandlerFunc(handler.SetVideoOwner)))
	mux.Handle("GET /v1/staff/assignable", RequireAuth(verifier, http.HandlerFunc(handler.ListAssignableStaff)))

	mux.Handle("GET /v1/export/fixtures.csv", RequireAuth(verifier, http.HandlerFunc(handler.ExportFixturesCSV)))
}
