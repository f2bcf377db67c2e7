// Package traceview serves a recorded run over HTTP.
package traceview

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/tracing"
)

// Server answers queries about one trace.
type Server struct {
	reader datarecording.DataReader
}

// NewServer creates a server that reads from reader.
func NewServer(reader datarecording.DataReader) *Server {
	reader.MapTable(datarecording.ExecTable, datarecording.ExecInfo{})
	reader.MapTable(tracing.HaltTable, tracing.HaltEntry{})
	reader.MapTable(tracing.TickTable, tracing.TickEntry{})
	reader.MapTable(tracing.ActionTable, tracing.ActionEntry{})

	return &Server{reader: reader}
}

// Router returns the handler of all the routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/info", s.httpInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/halt", s.httpHalt).Methods(http.MethodGet)
	r.HandleFunc("/api/ticks", s.httpTicks).Methods(http.MethodGet)
	r.HandleFunc("/api/actions", s.httpActions).Methods(http.MethodGet)

	return r
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("serving trace")

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) httpInfo(w http.ResponseWriter, r *http.Request) {
	rows, _, err := s.reader.Query(r.Context(), datarecording.ExecTable,
		datarecording.QueryParams{})
	if err != nil {
		internalError(w, err)
		return
	}

	info := make(map[string]string, len(rows))
	for _, row := range rows {
		e := row.(*datarecording.ExecInfo)
		info[e.Property] = e.Value
	}

	writeJSON(w, info)
}

func (s *Server) httpHalt(w http.ResponseWriter, r *http.Request) {
	rows, _, err := s.reader.Query(r.Context(), tracing.HaltTable,
		datarecording.QueryParams{Limit: 1})
	if err != nil {
		internalError(w, err)
		return
	}

	if len(rows) == 0 {
		http.Error(w, "the run did not halt", http.StatusNotFound)
		return
	}

	writeJSON(w, rows[0])
}

// page is a slice of rows plus the number of rows matching the query.
type page struct {
	Total int   `json:"total"`
	Rows  []any `json:"rows"`
}

func (s *Server) httpTicks(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := q.params()
	params.OrderBy = "Tick"

	s.writePage(w, r, tracing.TickTable, params)
}

func (s *Server) httpActions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := q.params()
	params.OrderBy = "Tick, Robot"

	if robot := r.URL.Query().Get("robot"); robot != "" {
		id, err := strconv.Atoi(robot)
		if err != nil {
			http.Error(w, "robot must be an integer", http.StatusBadRequest)
			return
		}

		params.Where = andWhere(params.Where, "Robot = ?")
		params.Args = append(params.Args, id)
	}

	if action := r.URL.Query().Get("action"); action != "" {
		params.Where = andWhere(params.Where, "Action = ?")
		params.Args = append(params.Args, action)
	}

	s.writePage(w, r, tracing.ActionTable, params)
}

func (s *Server) writePage(
	w http.ResponseWriter,
	r *http.Request,
	table string,
	params datarecording.QueryParams,
) {
	rows, total, err := s.reader.Query(r.Context(), table, params)
	if err != nil {
		internalError(w, err)
		return
	}

	if rows == nil {
		rows = []any{}
	}

	writeJSON(w, page{Total: total, Rows: rows})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("trace query failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
