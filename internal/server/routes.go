package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/calvinalkan/flatdb/internal/naming"
	"github.com/calvinalkan/flatdb/internal/store"
	"github.com/calvinalkan/flatdb/internal/textutil"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /list/db", s.listDatabases)
	mux.HandleFunc("GET /list/table/{db}", s.listTables)
	mux.HandleFunc("GET /list/table/data/{db}/{table}", s.fetchTable)
	mux.HandleFunc("GET /list/table/filter/{db}/{table}/{field}/{value}", s.fetchFiltered)
	mux.HandleFunc("POST /create/db", s.createDatabase)
	mux.HandleFunc("POST /create/table", s.createTable)
	mux.HandleFunc("POST /insert", s.insert)
	mux.HandleFunc("POST /update", s.update)
	mux.HandleFunc("DELETE /delete/db/{db}", s.deleteDatabase)
	mux.HandleFunc("DELETE /delete/table/{db}/{table}", s.deleteTable)
	mux.HandleFunc("DELETE /delete/table/data/{db}/{table}/{field}/{value}", s.deleteRows)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) { writeNotFound(w) })
}

// logResult records the precise store outcome that the wire format hides.
func (s *Server) logResult(ctx context.Context, op string, err error, args ...any) {
	if err == nil {
		return
	}

	args = append(args, "status", store.StatusOf(err).String(), "err", err, "id", requestID(ctx))

	if store.StatusOf(err) == store.StatusFailed {
		s.log.ErrorContext(ctx, op+" failed", args...)

		return
	}

	s.log.DebugContext(ctx, op+" failed", args...)
}

// mutationCode maps a failed mutation to an HTTP code: rejected input is
// 400, I/O failures are 500, everything else is reported as a conflict.
func mutationCode(err error) int {
	switch store.StatusOf(err) {
	case store.StatusOK, store.StatusEmpty:
		return http.StatusOK
	case store.StatusInvalid:
		return http.StatusBadRequest
	case store.StatusFailed:
		return http.StatusInternalServerError
	case store.StatusNotFound, store.StatusConflict, store.StatusMalformed:
		return StatusConflict
	}

	return StatusConflict
}

func (s *Server) listDatabases(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListDatabases(r.Context())
	s.logResult(r.Context(), "list databases", err)

	files := make([]string, 0, len(names))
	for _, name := range names {
		files = append(files, name+naming.DatabaseExt)
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   statusLine(http.StatusOK),
		Response: map[string][]string{"database": files},
	})
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	db := r.PathValue("db")

	tables, err := s.store.ListTables(r.Context(), db)
	s.logResult(r.Context(), "list tables", err, "db", db)

	if tables == nil {
		tables = []string{}
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   statusLine(http.StatusOK),
		Response: map[string][]string{"tables": tables},
		Database: db,
	})
}

func (s *Server) fetchTable(w http.ResponseWriter, r *http.Request) {
	db, table := r.PathValue("db"), r.PathValue("table")

	res, err := s.store.Fetch(r.Context(), db, table)
	s.logResult(r.Context(), "fetch", err, "db", db, "table", table)

	s.writeRows(w, res, envelope{Database: db, Table: table})
}

func (s *Server) fetchFiltered(w http.ResponseWriter, r *http.Request) {
	db, table := r.PathValue("db"), r.PathValue("table")
	field, value := r.PathValue("field"), r.PathValue("value")

	res, err := s.store.FetchFiltered(r.Context(), db, table, field, value)
	s.logResult(r.Context(), "fetch filtered", err, "db", db, "table", table, "field", field)

	s.writeRows(w, res, envelope{Database: db, Table: table})
}

func (s *Server) writeRows(w http.ResponseWriter, res store.Result, env envelope) {
	rows, err := res.JSON()
	if err != nil {
		s.log.Error("encoding rows failed", "err", err)

		rows = []byte("[]")
	}

	env.Status = statusLine(http.StatusOK)
	env.Response = json.RawMessage(rows)

	writeJSON(w, http.StatusOK, env)
}

type createDatabaseRequest struct {
	DatabaseName string `json:"database_name"`
}

func (s *Server) createDatabase(w http.ResponseWriter, r *http.Request) {
	var req createDatabaseRequest

	raw, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	if textutil.Trim(req.DatabaseName) == "" {
		writeBadRequest(w, raw, "database_name is required.")

		return
	}

	_, err := s.store.CreateDatabase(r.Context(), req.DatabaseName)
	s.logResult(r.Context(), "create database", err, "db", req.DatabaseName)

	if err != nil {
		code := mutationCode(err)
		writeJSON(w, code, envelope{
			Status:   statusLine(code),
			Response: req,
			Message:  fmt.Sprintf("Database '%s' already exists.", req.DatabaseName),
		})

		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   statusLine(http.StatusOK),
		Response: req,
		Message:  fmt.Sprintf("Database '%s' created successfully.", req.DatabaseName),
	})
}

type createTableRequest struct {
	DatabaseName string `json:"database_name"`
	TableName    string `json:"table_name"`
	Columns      string `json:"columns"`
	Types        string `json:"types"`
}

func (s *Server) createTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest

	raw, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	columns := textutil.Split(req.Columns, ",")
	types := textutil.Split(req.Types, ",")

	if textutil.Trim(req.DatabaseName) == "" || textutil.Trim(req.TableName) == "" ||
		textutil.Trim(req.Columns) == "" || len(columns) != len(types) {
		writeBadRequest(w, raw, "database_name, table_name and matching columns/types are required.")

		return
	}

	err := s.store.CreateTable(r.Context(), req.DatabaseName, req.TableName, columns, types)
	s.logResult(r.Context(), "create table", err, "db", req.DatabaseName, "table", req.TableName)

	if err != nil {
		code := mutationCode(err)
		writeJSON(w, code, envelope{
			Status:   statusLine(code),
			Response: req,
			Message:  fmt.Sprintf("Table '%s' already exists.", req.TableName),
		})

		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   statusLine(http.StatusOK),
		Response: req,
		Message:  fmt.Sprintf("Table '%s' created successfully.", req.TableName),
	})
}

type insertRequest struct {
	DatabaseName string `json:"database_name"`
	TableName    string `json:"table_name"`
	Value        string `json:"value"`
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest

	raw, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	if textutil.Trim(req.DatabaseName) == "" || textutil.Trim(req.TableName) == "" || textutil.Trim(req.Value) == "" {
		writeBadRequest(w, raw, "database_name, table_name and value are required.")

		return
	}

	err := s.store.Insert(r.Context(), req.DatabaseName, req.TableName, req.Value)
	s.logResult(r.Context(), "insert", err, "db", req.DatabaseName, "table", req.TableName)

	if err != nil {
		code := mutationCode(err)
		writeJSON(w, code, envelope{
			Status:   statusLine(code),
			Response: req,
			Message:  fmt.Sprintf("Values in Table: '%s' were not inserted.", req.TableName),
		})

		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   statusLine(http.StatusOK),
		Response: req,
		Message:  fmt.Sprintf("Values in Table: '%s' inserted successfully.", req.TableName),
	})
}

type updateRequest struct {
	DatabaseName string `json:"database_name"`
	TableName    string `json:"table_name"`
	TargetField  string `json:"target_field"`
	TargetValue  string `json:"target_value"`
	NewField     string `json:"new_field"`
	NewValue     string `json:"new_value"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest

	raw, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	for _, v := range []string{req.DatabaseName, req.TableName, req.TargetField, req.TargetValue, req.NewField, req.NewValue} {
		if textutil.Trim(v) == "" {
			writeBadRequest(w, raw, "database_name, table_name, target_field, target_value, new_field and new_value are required.")

			return
		}
	}

	n, err := s.store.Update(r.Context(), req.DatabaseName, req.TableName, req.TargetField, req.TargetValue, req.NewField, req.NewValue)
	s.logResult(r.Context(), "update", err, "db", req.DatabaseName, "table", req.TableName, "field", req.TargetField)

	outcome := "updated successfully"
	if err != nil {
		outcome = "update failed"
	}

	code := http.StatusOK
	if store.StatusOf(err) == store.StatusFailed {
		code = http.StatusInternalServerError
	}

	writeJSON(w, code, envelope{
		Status:   statusLine(code),
		Response: req,
		Message: fmt.Sprintf("Table: '%s', Field: '%s', Value: '%s', Updated Field '%s', NEW_VALUE: '%s' %s (%d rows).",
			req.TableName, req.TargetField, req.TargetValue, req.NewField, req.NewValue, outcome, n),
	})
}

func (s *Server) deleteDatabase(w http.ResponseWriter, r *http.Request) {
	db := r.PathValue("db")

	err := s.store.DeleteDatabase(r.Context(), db)
	s.logResult(r.Context(), "delete database", err, "db", db)

	env := envelope{Status: statusLine(http.StatusOK), Database: db}

	if err != nil {
		env.Message = "Unable to delete database."
	} else {
		env.Response = 0
		env.Message = "Database deleted successfully."
	}

	writeJSON(w, http.StatusOK, env)
}

func (s *Server) deleteTable(w http.ResponseWriter, r *http.Request) {
	db, table := r.PathValue("db"), r.PathValue("table")

	err := s.store.DeleteTable(r.Context(), db, table)
	s.logResult(r.Context(), "delete table", err, "db", db, "table", table)

	env := envelope{Status: statusLine(http.StatusOK), Database: db, Table: table}

	if err != nil {
		env.Message = "Unable to delete Table."
	} else {
		env.Response = 1
		env.Message = "Table deleted successfully."
	}

	writeJSON(w, http.StatusOK, env)
}

func (s *Server) deleteRows(w http.ResponseWriter, r *http.Request) {
	db, table := r.PathValue("db"), r.PathValue("table")
	field, value := r.PathValue("field"), r.PathValue("value")

	n, err := s.store.DeleteRows(r.Context(), db, table, field, value)
	s.logResult(r.Context(), "delete rows", err, "db", db, "table", table, "field", field)

	env := envelope{
		Status:     statusLine(http.StatusOK),
		Database:   db,
		Table:      table,
		CheckField: field,
		CheckValue: value,
	}

	if err != nil {
		env.Message = "Unable to delete Table Row."
	} else {
		env.Response = n
		env.Message = "Table Row deleted successfully."
	}

	writeJSON(w, http.StatusOK, env)
}

// decodeBody reads and decodes a JSON body into v. On failure it writes the
// 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBadRequest(w, nil, "Failed to read request body.")

		return nil, false
	}

	if err := json.Unmarshal(raw, v); err != nil {
		writeBadRequest(w, raw, "Invalid request body.")

		return raw, false
	}

	return raw, true
}
