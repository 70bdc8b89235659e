package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/internal/middleware"
	"github.com/oncodrug-server/internal/service"
	"github.com/oncodrug-server/pkg/hgvs"
)

// PatternRequest is the body of a pattern diagnostics call
type PatternRequest struct {
	Variant string `json:"variant"`
}

// PatternResponse lists the search patterns derived from a descriptor
type PatternResponse struct {
	Variant  string             `json:"variant"`
	RefSeq   string             `json:"refSeq,omitempty"`
	Patterns []domain.Predicate `json:"patterns"`
}

// HealthResponse reports the state of the service dependencies
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleSearchByVariant(c *gin.Context) {
	var req domain.SearchByVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	result, err := s.matcher.SearchByVariant(c.Request.Context(), &req, s.pageParams(c, s.searchConfig().VariantPageSize))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchDrugs(c *gin.Context) {
	var req domain.DrugSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	result, err := s.matcher.SearchDrugs(c.Request.Context(), &req, s.pageParams(c, s.searchConfig().DrugPageSize))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMatchGenes(c *gin.Context) {
	var req domain.GeneMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	result, err := s.matcher.MatchGenes(c.Request.Context(), &req, s.pageParams(c, s.searchConfig().VariantPageSize))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid record id", c.Param("id"))
		return
	}

	record, err := s.matcher.GetRecord(c.Request.Context(), c.Param("cancerType"), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleExtractPatterns(c *gin.Context) {
	var req PatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, PatternResponse{
		Variant:  req.Variant,
		RefSeq:   hgvs.ExtractRefSeq(req.Variant),
		Patterns: hgvs.ExtractPatterns(req.Variant),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		for name, check := range s.checks {
			if err := check.Ping(ctx); err != nil {
				s.logger.WithError(err).WithField("check", name).Warn("Health check failed")
				resp.Checks[name] = "unhealthy"
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "healthy"
		}
	}

	c.JSON(status, resp)
}

func (s *Server) searchConfig() domain.SearchConfig {
	return s.configManager.GetConfig().Search
}

func (s *Server) pageParams(c *gin.Context, defaultLimit int) service.PageParams {
	return service.ParsePageParams(c.Query("page"), c.Query("limit"), defaultLimit, s.searchConfig().MaxPageSize)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid request body", err.Error())
}

// writeError maps matcher errors onto HTTP statuses. Storage details stay in the logs.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCancerType):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidCancerType, "Invalid cancer type", err.Error())
	case errors.Is(err, domain.ErrMissingVariantInput):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeMissingVariantInput, "At least one variant is required", "")
	case errors.Is(err, domain.ErrInvalidGene):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidGene, "Invalid gene symbol", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "Record not found", "")
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(c, http.StatusGatewayTimeout, domain.ErrCodeTimeout, "Request timed out", "")
	case errors.Is(err, domain.ErrStorage):
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeStorage, "Storage failure", "")
	default:
		s.logger.WithError(err).WithField("path", c.FullPath()).Error("Unhandled request error")
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "Internal server error", "")
	}
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	correlationID := c.GetString(middleware.CorrelationIDKey)
	if status >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"code":           code,
			"correlation_id": correlationID,
		}).Warn("Request failed")
	}
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, correlationID))
}
