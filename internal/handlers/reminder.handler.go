package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/emailzus/reminder-engine/internal/engine"
	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/internal/services"
	xhttp "github.com/emailzus/reminder-engine/pkg/http"
	"github.com/fasthttp/router"
)

type ReminderService interface {
	Create(ctx context.Context, p model.ReminderCreateRequest) (*model.Reminder, error)
	Get(ctx context.Context, id int64) (*model.Reminder, error)
	List(ctx context.Context, f model.ReminderFilter) ([]*model.Reminder, int64, error)
}

type SweepRunner interface {
	ProcessDueReminders(ctx context.Context) (engine.SweepResult, error)
}

type ReminderHandler struct {
	svc   ReminderService
	sweep SweepRunner
}

func RegisterReminderRoutes(e *router.Group, h *ReminderHandler) {
	e.POST("/reminders", h.CreateReminder)
	e.GET("/reminders", h.ListReminders)
	e.GET("/reminders/{id}", h.GetReminder)
	e.POST("/reminders/process", h.ProcessDueReminders)
}

func NewReminderHandler(svc ReminderService, sweep SweepRunner) *ReminderHandler {
	return &ReminderHandler{
		svc:   svc,
		sweep: sweep,
	}
}

type createReminderRequest struct {
	CustomerID        int64    `json:"customer_id"`
	TemplateID        int64    `json:"template_id"`
	StartDate         string   `json:"start_date"`
	Frequency         string   `json:"frequency"`
	ExpiresAt         string   `json:"expires_at,omitempty"`
	NotificationRules []string `json:"notification_rules,omitempty"`
}

type listRemindersResponse struct {
	Items []*model.Reminder `json:"items"`
	Total int64             `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ReminderHandler) CreateReminder(ctx *xhttp.RequestCtx) {
	var req createReminderRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	startDate, err := parseTime(req.StartDate)
	if err != nil {
		writeError(ctx, 400, "invalid start_date: "+err.Error())
		return
	}

	p := model.ReminderCreateRequest{
		CustomerID:        req.CustomerID,
		TemplateID:        req.TemplateID,
		StartDate:         startDate,
		Frequency:         model.Frequency(req.Frequency),
		NotificationRules: req.NotificationRules,
	}
	if req.ExpiresAt != "" {
		expires, err := parseTime(req.ExpiresAt)
		if err != nil {
			writeError(ctx, 400, "invalid expires_at: "+err.Error())
			return
		}
		p.ExpiresAt = &expires
	}

	reminder, err := h.svc.Create(ctx, p)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) || errors.Is(err, services.ErrTemplateNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, reminder)
}

func (h *ReminderHandler) GetReminder(ctx *xhttp.RequestCtx) {
	idStr, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	reminder, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrReminderNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, "could not load reminder")
		return
	}
	writeJSON(ctx, 200, reminder)
}

func (h *ReminderHandler) ListReminders(ctx *xhttp.RequestCtx) {
	var f model.ReminderFilter

	if v := query(ctx, "customer_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CustomerID = &id
		}
	}
	if v := query(ctx, "active"); v != "" {
		active := strings.EqualFold(v, "true") || v == "1"
		f.Active = &active
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, listRemindersResponse{Items: items, Total: total})
}

// ProcessDueReminders triggers a sweep pass manually. The response is always
// a summary count; per-reminder failures never surface here.
func (h *ReminderHandler) ProcessDueReminders(ctx *xhttp.RequestCtx) {
	result, err := h.sweep.ProcessDueReminders(ctx)
	if err != nil {
		writeError(ctx, 500, "could not load due reminders")
		return
	}
	writeJSON(ctx, 200, result)
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
