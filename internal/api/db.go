package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler reports on the readings database.
type DBHandler struct {
	db     *sql.DB
	driver string
}

// NewDBHandler creates a database handler. conn may be nil when the service
// runs on the built-in sample.
func NewDBHandler(conn *sql.DB, driver string) *DBHandler {
	return &DBHandler{db: conn, driver: driver}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/db/tables", h.ListTables, huma.OperationTags("db"))
}

// TablesBody lists the tables of the readings database.
type TablesBody struct {
	Driver string   `json:"driver" doc:"Database driver" example:"duckdb"`
	Tables []string `json:"tables" doc:"List of table names"`
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body TablesBody
}

const (
	duckdbTablesSQL = `SELECT table_name FROM information_schema.tables ORDER BY table_name`
	sqliteTablesSQL = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`
)

// ListTables returns the database tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	query := duckdbTablesSQL
	if h.driver == "sqlite" {
		query = sqliteTablesSQL
	}
	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, huma.Error500InternalServerError("Failed to read table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}

	return &TablesOutput{Body: TablesBody{Driver: h.driver, Tables: tables}}, nil
}
