package main

import (
	"errors"
	"fmt"
	"net/http"

	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/publish"
	"Go2NetLoss/internal/query"

	"github.com/gorilla/mux"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// NewRouter registers every API route.
func NewRouter(h *APIHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/results", h.listResultsHandler).Methods("GET")
	r.HandleFunc("/api/v1/results/{type}/{config}", h.getResultHandler).Methods("GET")
	return r
}

func (h *APIHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// listResultsHandler returns the latest summary of every scenario.
func (h *APIHandler) listResultsHandler(w http.ResponseWriter, r *http.Request) {
	groups, err := h.querier.ListGroups(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list results: %v", err), http.StatusInternalServerError)
		return
	}

	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(groups))}
	for _, g := range groups {
		msg, err := publish.ToStruct(g)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to convert result: %v", err), http.StatusInternalServerError)
			return
		}
		list.Values = append(list.Values, structpb.NewStructValue(msg))
	}
	writeJSON(w, &structpb.Struct{Fields: map[string]*structpb.Value{
		"results": structpb.NewListValue(list),
	}})
}

// getResultHandler returns the latest summary of one scenario.
func (h *APIHandler) getResultHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	g, err := h.querier.GetGroup(r.Context(), vars["type"], vars["config"])
	if errors.Is(err, query.ErrNotFound) {
		http.Error(w, fmt.Sprintf("no results for scenario %s_%s", vars["type"], vars["config"]), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query result: %v", err), http.StatusInternalServerError)
		return
	}
	writeSummary(w, g)
}

func writeSummary(w http.ResponseWriter, g *model.GroupSummary) {
	msg, err := publish.ToStruct(g)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to convert result: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, msg)
}

func writeJSON(w http.ResponseWriter, msg proto.Message) {
	jsonBytes, err := protojson.Marshal(msg)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
