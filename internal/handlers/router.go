package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups the handlers served by NewRouter.
type Routes struct {
	Insights   *InsightsHandler
	Multiquery *MultiqueryHandler
	Load       *LoadHandler
	Generator  *GeneratorHandler
	Upload     *UploadHandler
	Metrics    *MetricsHandler
	Config     *ConfigHandler
}

// NewRouter wires the API routes, the simulator endpoint and /health.
// Nil handlers are left unrouted.
func NewRouter(rt Routes) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog)

	api := router.PathPrefix("/api").Subrouter()
	if rt.Insights != nil {
		api.HandleFunc("/insights/{objectId}", rt.Insights.Handle).Methods("GET")
	}
	if rt.Load != nil {
		api.HandleFunc("/load", rt.Load.Handle).Methods("POST")
	}
	if rt.Generator != nil {
		api.HandleFunc("/generate-dummy", rt.Generator.Handle).Methods("POST")
	}
	if rt.Upload != nil {
		api.HandleFunc("/upload-csv", rt.Upload.Handle).Methods("POST")
	}
	if rt.Metrics != nil {
		api.HandleFunc("/metrics", rt.Metrics.HandleGet).Methods("GET")
		api.HandleFunc("/metrics", rt.Metrics.HandleDelete).Methods("DELETE")
	}
	if rt.Config != nil {
		api.HandleFunc("/config", rt.Config.Handle).Methods("GET")
	}

	if rt.Multiquery != nil {
		router.HandleFunc("/method/fql.multiquery", rt.Multiquery.Handle).Methods("POST")
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return router
}
