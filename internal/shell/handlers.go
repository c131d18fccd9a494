// Copyright (c) 2026 Planora. All rights reserved.

package shell

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planora/edt-client/internal/calendar"
	"github.com/planora/edt-client/internal/edtapi"
	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/internal/guard"
	"github.com/planora/edt-client/internal/nav"
	"github.com/planora/edt-client/internal/notify"
	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/platform/constants"
	"github.com/planora/edt-client/internal/platform/respond"
	"github.com/planora/edt-client/internal/platform/validate"
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/internal/session"
	"github.com/planora/edt-client/pkg/pagination"
	"github.com/planora/edt-client/pkg/pointer"
)

// Handler implements every shell endpoint.
//
// # Scope
//
// Session lifecycle, navigation checks, the sidebar menu, the weekly
// calendar grid, notifications, and report downloads. Handlers validate
// input, call exactly one component, and render the result — no business
// rules live here.
type Handler struct {
	store         *session.Store
	guard         *guard.Guard
	academic      *edtapi.AcademicClient
	scheduling    *edtapi.SchedulingClient
	notifications *edtapi.NotificationsClient
	reports       *edtapi.ReportsClient
	center        *notify.Center
	log           *slog.Logger
}

// NewHandler constructs the shell handler set.
func NewHandler(
	store *session.Store,
	g *guard.Guard,
	academic *edtapi.AcademicClient,
	scheduling *edtapi.SchedulingClient,
	notifications *edtapi.NotificationsClient,
	reports *edtapi.ReportsClient,
	center *notify.Center,
	log *slog.Logger,
) *Handler {
	return &Handler{
		store:         store,
		guard:         g,
		academic:      academic,
		scheduling:    scheduling,
		notifications: notifications,
		reports:       reports,
		center:        center,
		log:           log,
	}
}

// Routes returns the shell's route tree.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Session lifecycle
	router.Get("/session", h.getSession)
	router.Post("/session/login", h.login)
	router.Post("/session/logout", h.logout)
	router.Post("/session/register", h.register)
	router.Post("/session/clear-error", h.clearError)

	// Navigation
	router.Get("/view", h.checkView)
	router.Get("/nav", h.getNav)

	// Calendar
	router.Get("/calendar/weekly", h.weeklyCalendar)

	// Academic catalogue
	router.Get("/academic/departments", h.listDepartments)
	router.Get("/academic/programs", h.listPrograms)
	router.Get("/academic/subjects", h.listSubjects)
	router.Get("/academic/rooms", h.listRooms)

	// Notifications
	router.Get("/notifications", h.listNotifications)
	router.Get("/notifications/unread", h.unreadCount)
	router.Post("/notifications/{id}/read", h.markNotificationRead)
	router.Post("/notifications/read-all", h.markAllNotificationsRead)

	// Reports
	router.Post("/reports/export/schedules", h.exportSchedules)
	router.Post("/reports/export/teacher-workload", h.exportTeacherWorkload)
	router.Post("/reports/import", h.importExcel)
	router.Get("/reports/analytics", h.dashboardAnalytics)

	return router
}

// health reports liveness for the renderer's startup probe.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

// # Session Lifecycle

func (h *Handler) getSession(w http.ResponseWriter, _ *http.Request) {
	respond.OK(w, h.store.Snapshot())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respond.Error(w, r, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required("email", creds.Email).
		Email("email", creds.Email).
		Required("password", creds.Password).
		Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.store.Login(r.Context(), creds.Email, creds.Password); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, h.store.Snapshot())
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout(r.Context())
	h.center.Clear()
	respond.NoContent(w)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input session.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, validate.ErrInvalidJSON)
		return
	}

	roleValues := make([]string, len(rbac.Roles))
	for i, role := range rbac.Roles {
		roleValues[i] = string(role)
	}

	validator := &validate.Validator{}
	if err := validator.
		Required("username", input.Username).
		MaxLen("username", input.Username, 150).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Required("first_name", input.FirstName).
		Required("last_name", input.LastName).
		OneOf("role", string(input.Role), roleValues...).
		Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.store.Register(r.Context(), input)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, user)
}

func (h *Handler) clearError(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearError()
	respond.NoContent(w)
}

// # Navigation

// checkView evaluates the route guard for ?path=... and returns the decision.
func (h *Handler) checkView(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respond.Error(w, r, apperr.ValidationError("Missing path parameter",
			apperr.FieldError{Field: "path", Message: "This field is required"}))
		return
	}
	respond.OK(w, h.guard.Check(path))
}

// getNav returns the sidebar entries visible to the current role.
func (h *Handler) getNav(w http.ResponseWriter, _ *http.Request) {
	snap := h.store.Snapshot()
	items := nav.VisibleItems(nav.DefaultItems(), snap.Role())
	if items == nil {
		items = []nav.Item{}
	}
	respond.OK(w, items)
}

// # Calendar

// weeklyCalendar builds the week grid for ?week_start= (defaults to the
// current week's Monday), optionally filtered by program, teacher, or room.
func (h *Handler) weeklyCalendar(w http.ResponseWriter, r *http.Request) {
	weekStart := r.URL.Query().Get("week_start")
	if weekStart == "" {
		weekStart = calendar.StartOfWeek(time.Now()).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", weekStart); err != nil {
		respond.Error(w, r, apperr.ValidationError("Invalid week_start",
			apperr.FieldError{Field: "week_start", Message: "Must be an ISO date (YYYY-MM-DD)"}))
		return
	}

	filter := edtapi.ScheduleFilter{
		ProgramID: queryID(r, "program_id"),
		TeacherID: queryID(r, "teacher_id"),
		RoomID:    queryID(r, "room_id"),
	}

	week, err := h.scheduling.Weekly(r.Context(), weekStart, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	slots, err := h.scheduling.TimeSlots(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, calendar.BuildWeek(week, slots))
}

// # Academic Catalogue

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.academic.Departments(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, departments)
}

func (h *Handler) listPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.academic.Programs(r.Context(), pointer.Val(queryID(r, "department_id")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, programs)
}

func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.academic.Subjects(r.Context(), pointer.Val(queryID(r, "department_id")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, subjects)
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.academic.Rooms(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, rooms)
}

// # Notifications

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := h.notifications.List(r.Context(), pagination.FromRequest(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.center.Replace(page.Results)
	respond.OK(w, page)
}

func (h *Handler) unreadCount(w http.ResponseWriter, _ *http.Request) {
	respond.OK(w, map[string]int{"unread_count": h.center.Unread()})
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("Invalid notification id"))
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	h.center.MarkRead(id)
	respond.NoContent(w)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context()); err != nil {
		respond.Error(w, r, err)
		return
	}
	h.center.MarkAllRead()
	respond.NoContent(w)
}

// # Reports

// exportSchedules streams a backend schedule export through to the renderer.
func (h *Handler) exportSchedules(w http.ResponseWriter, r *http.Request) {
	h.streamExport(w, r, h.reports.ExportSchedules)
}

// exportTeacherWorkload streams the per-teacher workload export.
func (h *Handler) exportTeacherWorkload(w http.ResponseWriter, r *http.Request) {
	h.streamExport(w, r, h.reports.ExportTeacherWorkload)
}

// streamExport validates the export filter, runs fetch under the download
// deadline, and copies the binary body through without buffering it.
func (h *Handler) streamExport(w http.ResponseWriter, r *http.Request, fetch func(context.Context, edtapi.ExportParams) (*gateway.DownloadResult, error)) {
	var params edtapi.ExportParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respond.Error(w, r, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		OneOf("format", params.Format, "pdf", "excel", "csv").
		Required("start_date", params.StartDate).
		Required("end_date", params.EndDate).
		Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	ctx, cancel := contextWithDownloadDeadline(r)
	defer cancel()

	result, err := fetch(ctx, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer result.Body.Close()

	if result.ContentType != "" {
		w.Header().Set(constants.HeaderContentType, result.ContentType)
	}
	if result.Filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	}
	if _, err := io.Copy(w, result.Body); err != nil {
		h.log.Warn("export stream interrupted", slog.Any("error", err))
	}
}

// maxImportSize bounds the in-memory portion of an uploaded spreadsheet.
const maxImportSize = 10 << 20

// importExcel forwards an uploaded spreadsheet to the backend bulk import.
func (h *Handler) importExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respond.Error(w, r, apperr.ValidationError("Invalid multipart form"))
		return
	}

	kind := r.FormValue("type")
	validator := &validate.Validator{}
	if err := validator.
		OneOf("type", kind, "teachers", "students", "schedules").
		Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.ValidationError("Missing file",
			apperr.FieldError{Field: "file", Message: "This field is required"}))
		return
	}
	defer file.Close()

	ctx, cancel := contextWithDownloadDeadline(r)
	defer cancel()

	result, err := h.reports.ImportExcel(ctx, kind, header.Filename, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, result)
}

// dashboardAnalytics forwards the role-shaped dashboard counters untouched.
func (h *Handler) dashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.reports.DashboardAnalytics(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, analytics)
}

// # Helpers

// queryID parses an optional numeric query parameter; absent or malformed
// values become nil so the backend filter is omitted rather than zeroed.
func queryID(r *http.Request, key string) *int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return pointer.To(id)
}

func contextWithDownloadDeadline(r *http.Request) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(r.Context(), constants.DownloadTimeout)
}
