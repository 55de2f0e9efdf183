package httpserver

import (
	"encoding/json"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
)

type GraphQLHandler struct {
	Schema *graphql.Schema
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Serve executes a query sent as a JSON body or, for GET, as query
// parameters. Resolver failures are reported inside the response body.
func (h *GraphQLHandler) Serve(c echo.Context) error {
	var req graphqlRequest
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if raw := c.QueryParam("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid variables")
			}
		}
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	resp := h.Schema.Exec(c.Request().Context(), req.Query, req.OperationName, req.Variables)
	return c.JSON(http.StatusOK, resp)
}
