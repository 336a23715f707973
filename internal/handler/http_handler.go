package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-idgen/internal/service"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	"github.com/weiawesome/wes-idgen/pkg/log"
	"github.com/weiawesome/wes-idgen/pkg/middleware"
	"github.com/weiawesome/wes-idgen/pkg/response"
)

// GenerateRequest is the body of POST /api/v1/ids.
type GenerateRequest struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// AdminRole is required on the issuance ledger routes when auth is enabled.
const AdminRole = "admin"

// Handler handles HTTP requests for the ID service.
type Handler struct {
	idService      service.IDService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler. authMiddleware may be nil, in which
// case the ledger routes are public.
func NewHandler(idService service.IDService, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		idService:      idService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		ids := api.Group("/ids")
		{
			ids.POST("", h.GenerateIDs)
			ids.GET("/:id", h.ParseID)
			ids.GET("/:id/validate", h.ValidateID)
		}
		api.GET("/kinds", h.ListKinds)

		if h.authMiddleware != nil {
			api.GET("/issuances", h.authMiddleware.RequireRole(AdminRole), h.ListIssuances)
		} else {
			api.GET("/issuances", h.ListIssuances)
		}
	}
}

// GenerateIDs generates one or more IDs of the requested type.
func (h *Handler) GenerateIDs(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			l.Warn().Err(err).Msg("failed to bind generate request")
			response.BadRequest(c, err.Error())
			return
		}
	}
	if req.Count == 0 {
		req.Count = 1
	}

	result, err := h.idService.Generate(ctx, req.Type, req.Count)
	if err != nil {
		h.writeError(c, err, "failed to generate ids")
		return
	}

	c.Set(log.FieldIDKind, result.Kind.String())
	c.Set(log.FieldIDCount, len(result.IDs))
	response.Created(c, result)
}

// ParseID decodes an ID into its components.
func (h *Handler) ParseID(c *gin.Context) {
	ctx := c.Request.Context()
	kind := c.Query("type")
	c.Set(log.FieldIDKind, kind)

	result, err := h.idService.Parse(ctx, kind, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to parse id")
		return
	}

	response.Success(c, result)
}

// ValidateID reports whether an ID is well formed.
func (h *Handler) ValidateID(c *gin.Context) {
	ctx := c.Request.Context()
	kind := c.Query("type")
	c.Set(log.FieldIDKind, kind)

	result, err := h.idService.Validate(ctx, kind, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to validate id")
		return
	}

	response.Success(c, result)
}

// ListKinds lists the registered kinds and the default one.
func (h *Handler) ListKinds(c *gin.Context) {
	response.Success(c, h.idService.Kinds())
}

// ListIssuances returns the most recent issuance records.
func (h *Handler) ListIssuances(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			response.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	issuances, err := h.idService.RecentIssuances(ctx, limit)
	if err != nil {
		h.writeError(c, err, "failed to list issuances")
		return
	}

	response.Success(c, issuances)
}

func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	l := log.Ctx(c.Request.Context())

	switch {
	case errors.Is(err, service.ErrInvalidCount):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidCount, err.Error())
	case errors.Is(err, idgen.ErrUnregisteredKind):
		response.Error(c, http.StatusBadRequest, response.CodeUnknownKind, err.Error())
	case errors.Is(err, idgen.ErrLibraryUsage):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrLedgerDisabled):
		response.NotFound(c, err.Error())
	case errors.Is(err, idgen.ErrClockMovedBackwards):
		l.Warn().Err(err).Msg(msg)
		response.ServiceUnavailable(c, response.CodeClockMovedBackwards, "clock moved backwards, retry later")
	default:
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
