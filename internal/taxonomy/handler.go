package taxonomy

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdpulse/backend/internal/aggregate"
	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/reports"
	"github.com/crowdpulse/backend/internal/viewer"
	"github.com/crowdpulse/backend/pkg/response"
)

// Handler serves the kind-generic endpoints: listing with aggregates and
// export, link/unlink/clone of event associations, and guarded delete. The
// per-entity packages embed it and add their own endpoints.
type Handler struct {
	kind    assoc.Kind
	svc     *Service
	reports *reports.Service
}

// NewHandler creates the shared handler for one entity kind.
func NewHandler(kind assoc.Kind, svc *Service, reportsSvc *reports.Service) *Handler {
	return &Handler{kind: kind, svc: svc, reports: reportsSvc}
}

// Announce publishes an entity mutation through the shared service so the
// per-entity handlers (create, pin) can push realtime updates.
func (h *Handler) Announce(ctx context.Context, companyID, entityID uuid.UUID, status string, data interface{}) {
	h.svc.AnnounceEntity(ctx, h.kind, companyID, entityID, status, data)
}

// List handles GET /events/:id/<entities>. The csv_pdf query parameter turns
// the listing into an export and returns a download URL instead of rows.
func (h *Handler) List(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	opts := BindListOptions(c)
	if format := c.Query("csv_pdf"); format != "" {
		if !reports.ValidFormat(format) {
			response.BadRequest(c, "csv_pdf must be csv or pdf")
			return
		}
		// exports cover the full filtered set, not one page
		opts.Page = 1
		opts.PageSize = aggregate.AllRows
		rows, _, err := h.svc.List(c.Request.Context(), v, h.kind, eventID, opts)
		if err != nil {
			response.FromError(c, err, "failed to load listing")
			return
		}
		columns, tableRows := reports.ListingTable(rows)
		reportType := h.kind.String() + "_listing"
		if c.Query("async") == "true" {
			exportID, err := h.reports.EnqueueExport(c.Request.Context(), eventID, v.UserID,
				reportType, format, columns, tableRows)
			if err != nil {
				response.Internal(c, "failed to queue export")
				return
			}
			response.OK(c, gin.H{"export_id": exportID})
			return
		}
		url, err := h.reports.Export(c.Request.Context(), eventID, v.UserID,
			reportType, format, columns, tableRows)
		if err != nil {
			response.Internal(c, "failed to export listing")
			return
		}
		response.OK(c, gin.H{"url": url})
		return
	}

	rows, totalCount, err := h.svc.List(c.Request.Context(), v, h.kind, eventID, opts)
	if err != nil {
		response.FromError(c, err, "failed to load listing")
		return
	}
	response.OK(c, gin.H{"rows": rows, "total": totalCount})
}

// IDsRequest is the body for link/unlink.
type IDsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// Link handles POST /events/:id/<entities>/link.
func (h *Handler) Link(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body IDsRequest
	if err := c.ShouldBindJSON(&body); err != nil || len(body.IDs) == 0 {
		response.BadRequest(c, "ids required")
		return
	}
	created, err := h.svc.Link(c.Request.Context(), v, h.kind, eventID, body.IDs)
	if err != nil {
		response.FromError(c, err, "failed to link")
		return
	}
	response.OK(c, gin.H{"linked": created})
}

// Unlink handles POST /events/:id/<entities>/unlink. A partial result (some
// entities retained by incident references) is reported with 207.
func (h *Handler) Unlink(c *gin.Context) {
	v := viewer.MustFromContext(c)
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body IDsRequest
	if err := c.ShouldBindJSON(&body); err != nil || len(body.IDs) == 0 {
		response.BadRequest(c, "ids required")
		return
	}
	result, err := h.svc.Unlink(c.Request.Context(), v, h.kind, eventID, body.IDs)
	if err != nil {
		response.FromError(c, err, "failed to unlink")
		return
	}
	if result.Partial() {
		response.PartialSuccess(c, result)
		return
	}
	response.OK(c, result)
}

// CloneRequest is the body for clone.
type CloneRequest struct {
	SourceEventID uuid.UUID `json:"source_event_id" binding:"required"`
}

// Clone handles POST /events/:id/<entities>/clone.
func (h *Handler) Clone(c *gin.Context) {
	v := viewer.MustFromContext(c)
	destEventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body CloneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "source_event_id required")
		return
	}
	created, err := h.svc.Clone(c.Request.Context(), v, h.kind, body.SourceEventID, destEventID)
	if err != nil {
		response.FromError(c, err, "failed to clone associations")
		return
	}
	response.OK(c, gin.H{"cloned": created})
}

// Delete handles DELETE /<entities>/:id with the event/incident guards.
func (h *Handler) Delete(c *gin.Context) {
	v := viewer.MustFromContext(c)
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), v, h.kind, entityID); err != nil {
		response.FromError(c, err, "failed to delete")
		return
	}
	response.NoContent(c)
}
