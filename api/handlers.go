package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"searchagent/agent"
)

const SearchOutcomeHeader = "X-Search-Outcome"

type searchBody struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results"`
}

type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleWelcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Search Agent API",
		"version": Version,
		"endpoints": []endpoint{
			{Method: http.MethodGet, Path: "/", Description: "This message"},
			{Method: http.MethodPost, Path: "/search", Description: "Search the web and analyze the results"},
			{Method: http.MethodGet, Path: "/healthz", Description: "Liveness check"},
			{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, agent.KindValidation, "malformed request body: "+err.Error())
		return
	}

	req := agent.SearchRequest{Query: body.Query, MaxResults: s.defaultMaxResults}
	if body.MaxResults != nil {
		req.MaxResults = *body.MaxResults
	}

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	bundle, err := s.service.Search(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
			// Client went away; nobody reads the response.
			c.Abort()
			return
		}
		kind := agent.Kind(err)
		if kind == agent.KindInternal {
			_ = c.Error(err)
		}
		writeError(c, statusForKind(kind), kind, err.Error())
		return
	}

	c.Header(SearchOutcomeHeader, string(bundle.Outcome))
	c.JSON(http.StatusOK, bundle)
}

func statusForKind(kind string) int {
	switch kind {
	case agent.KindValidation:
		return http.StatusBadRequest
	case agent.KindNoResults:
		return http.StatusNotFound
	case agent.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case agent.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Kind: kind, Message: message}})
}
