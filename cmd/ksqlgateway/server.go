package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	ksql "github.com/fbiengine/goksql"
)

const maxQueryBodyBytes = 1 << 20

type queryRequest struct {
	Source            string `json:"source"`
	Statement         string `json:"statement"`
	MetadataRetrieved bool   `json:"metadataRetrieved"`
	SourceQuery       string `json:"sourceQuery"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type catalogResponse struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type gateway struct {
	exec *ksql.Executor
}

func newRouter(exec *ksql.Executor, jwtSecret []byte) http.Handler {
	gw := &gateway{exec: exec}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		if len(jwtSecret) > 0 {
			r.Use(bearerAuth(jwtSecret))
		}
		r.Post("/query", gw.query)
		r.Get("/tables", gw.tables)
	})
	return r
}

// bearerAuth accepts requests carrying an HS256 token signed with secret and a non-empty sub claim.
func bearerAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(*jwt.Token) (interface{}, error) {
					return secret, nil
				}, jwt.WithValidMethods([]string{"HS256"}))
				if err == nil && token.Valid {
					if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Code:    http.StatusUnauthorized,
				Message: "unauthorized: provide a valid bearer token",
			})
		})
	}
}

func (gw *gateway) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: "invalid query body: " + err.Error()})
		return
	}
	format, err := ksql.ParseOutputFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := gw.exec.Run(r.Context(), &ksql.Query{
		Source:            req.Source,
		Statement:         req.Statement,
		MetadataRetrieved: req.MetadataRetrieved,
		SourceQuery:       req.SourceQuery,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := res.Encode(format)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (gw *gateway) tables(w http.ResponseWriter, r *http.Request) {
	entries, err := gw.exec.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]catalogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, catalogResponse{Name: e.Name, Kind: string(e.Kind)})
	}
	writeJSON(w, http.StatusOK, out)
}

// statusOf maps an execution failure to the status returned to the client.
func statusOf(kind ksql.ErrorKind) int {
	switch kind {
	case ksql.KindConfiguration, ksql.KindCompilationFailure:
		return http.StatusBadRequest
	case ksql.KindTransportFailure, ksql.KindMalformedResponse, ksql.KindSchemaMismatch:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	var ke *ksql.KsqlError
	if !errors.As(err, &ke) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: http.StatusInternalServerError, Message: err.Error()})
		return
	}
	status := statusOf(ke.Kind)
	writeJSON(w, status, errorResponse{Code: ke.Number, Kind: string(ke.Kind), Message: ke.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
