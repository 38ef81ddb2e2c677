package handlers

import (
	"context"
	"strconv"

	"github.com/emailzus/reminder-engine/internal/model"
	xhttp "github.com/emailzus/reminder-engine/pkg/http"
	"github.com/fasthttp/router"
)

type TemplateService interface {
	Create(ctx context.Context, p model.TemplateCreateRequest) (*model.Template, error)
	List(ctx context.Context, companyID int64) ([]*model.Template, error)
}

type TemplateHandler struct {
	svc TemplateService
}

func RegisterTemplateRoutes(e *router.Group, h *TemplateHandler) {
	e.POST("/templates", h.CreateTemplate)
	e.GET("/templates", h.ListTemplates)
}

func NewTemplateHandler(svc TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

type createTemplateRequest struct {
	CompanyID   int64    `json:"company_id"`
	Channel     string   `json:"channel"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

func (h *TemplateHandler) CreateTemplate(ctx *xhttp.RequestCtx) {
	var req createTemplateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	template, err := h.svc.Create(ctx, model.TemplateCreateRequest{
		CompanyID:   req.CompanyID,
		Channel:     model.Channel(req.Channel),
		Title:       req.Title,
		Body:        req.Body,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, template)
}

func (h *TemplateHandler) ListTemplates(ctx *xhttp.RequestCtx) {
	companyID, err := strconv.ParseInt(query(ctx, "company_id"), 10, 64)
	if err != nil {
		writeError(ctx, 400, "company_id is required")
		return
	}

	templates, err := h.svc.List(ctx, companyID)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, templates)
}
