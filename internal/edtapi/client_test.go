// Copyright (c) 2026 Planora. All rights reserved.

package edtapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/edt-client/internal/edtapi"
	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/internal/platform/apperr"
	"github.com/planora/edt-client/internal/rbac"
	"github.com/planora/edt-client/pkg/pagination"
	"github.com/planora/edt-client/pkg/pointer"
)

// staticTokens is a fixed-credential TokenSource for client tests; the
// refresh protocol itself is covered in the gateway package.
type staticTokens struct{ access, refresh string }

func (s *staticTokens) AccessToken() string     { return s.access }
func (s *staticTokens) RefreshToken() string    { return s.refresh }
func (s *staticTokens) ApplyAccessToken(string) {}
func (s *staticTokens) ForceLogout(string)      {}

func newTestGateway(t *testing.T, baseURL string) *gateway.Gateway {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := gateway.New(baseURL, &staticTokens{access: "t1", refresh: "r1"}, logger)
	require.NoError(t, err)
	return g
}

/*
TestAuthClient_Login decodes the backend's login envelope into a session
result.
*/
func TestAuthClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@b.com", creds["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": "Connexion réussie",
			"user": {"id": 7, "username": "alice", "role": "TEACHER"},
			"tokens": {"access": "acc", "refresh": "ref"}
		}`))
	}))
	defer server.Close()

	client := edtapi.NewAuthClient(newTestGateway(t, server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := client.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "acc", result.AccessToken)
	assert.Equal(t, "ref", result.RefreshToken)
	assert.Equal(t, rbac.RoleTeacher, result.User.Role)
}

/*
TestClients_SharedMount: the auth application lives under the same /api
prefix as every resource application, so one backend serves all clients.
*/
func TestClients_SharedMount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/profile/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "username": "alice", "role": "TEACHER"}`))
	})
	mux.HandleFunc("/api/scheduling/time-slots/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "start_time": "08:00:00", "end_time": "10:00:00"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	gw := newTestGateway(t, server.URL)

	user, err := edtapi.NewAuthClient(gw, slog.New(slog.NewTextHandler(io.Discard, nil))).CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleTeacher, user.Role)

	slots, err := edtapi.NewSchedulingClient(gw).TimeSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
}

/*
TestAuthClient_LoginRejected: a 401 from the login endpoint means wrong
credentials and must come back recoverable, never as a dead session.
*/
func TestAuthClient_LoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
	}))
	defer server.Close()

	client := edtapi.NewAuthClient(newTestGateway(t, server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.False(t, apperr.IsSessionInvalid(err))
	assert.Equal(t, apperr.KindRecoverable, apperr.KindOf(err))
}

/*
TestAcademicClient_Departments handles both the paginated envelope and the
bare-array list shape.
*/
func TestAcademicClient_Departments(t *testing.T) {
	bodies := map[string]string{
		"paginated": `{"count": 2, "next": null, "previous": null, "results": [
			{"id": 1, "name": "Informatique", "code": "INFO"},
			{"id": 2, "name": "Mathématiques", "code": "MATH"}
		]}`,
		"bare array": `[
			{"id": 1, "name": "Informatique", "code": "INFO"},
			{"id": 2, "name": "Mathématiques", "code": "MATH"}
		]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/academic/departments/", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := edtapi.NewAcademicClient(newTestGateway(t, server.URL))
			departments, err := client.Departments(context.Background())
			require.NoError(t, err)
			require.Len(t, departments, 2)
			assert.Equal(t, "INFO", departments[0].Code)
		})
	}
}

/*
TestSchedulingClient_Weekly decodes the day-indexed week map.
*/
func TestSchedulingClient_Weekly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scheduling/schedules/weekly/", r.URL.Path)
		assert.Equal(t, "2026-09-07", r.URL.Query().Get("week_start"))
		assert.Equal(t, "3", r.URL.Query().Get("program_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"week_start": "2026-09-07",
			"week_end": "2026-09-12",
			"schedule": {
				"0": {"date": "2026-09-07", "day_name": "Lundi", "schedules": [
					{"id": 11, "title": "Algorithmique", "subject_name": "Algo", "teacher_name": "Dupont"}
				]}
			}
		}`))
	}))
	defer server.Close()

	client := edtapi.NewSchedulingClient(newTestGateway(t, server.URL))

	week, err := client.Weekly(context.Background(), "2026-09-07", edtapi.ScheduleFilter{ProgramID: pointer.To[int64](3)})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", week.WeekStart)
	require.Contains(t, week.Days, "0")
	assert.Equal(t, "Lundi", week.Days["0"].DayName)
	require.Len(t, week.Days["0"].Schedules, 1)
	assert.Equal(t, "Algorithmique", week.Days["0"].Schedules[0].Title)
}

/*
TestNotificationsClient_List forwards the shell's page parameters to the
backend and decodes the page envelope.
*/
func TestNotificationsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 40, "next": "?page=3", "previous": "?page=1", "results": [
			{"id": 26, "title": "Cours annulé", "is_read": false}
		]}`))
	}))
	defer server.Close()

	client := edtapi.NewNotificationsClient(newTestGateway(t, server.URL))

	page, err := client.List(context.Background(), pagination.Params{Page: 2, Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, 40, page.Count)
	assert.True(t, page.HasNext())
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Cours annulé", page.Results[0].Title)
}

/*
TestNotificationsClient_UnreadCount decodes the counter endpoint.
*/
func TestNotificationsClient_UnreadCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications/unread-count/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unread_count": 4}`))
	}))
	defer server.Close()

	client := edtapi.NewNotificationsClient(newTestGateway(t, server.URL))

	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

/*
TestReportsClient_ExportSchedules posts the filter body and streams the
binary response back with its filename.
*/
func TestReportsClient_ExportSchedules(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/export/schedules/", r.URL.Path)

		var params edtapi.ExportParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "pdf", params.Format)
		assert.Equal(t, int64(5), pointer.Val(params.DepartmentID))

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="edt_export.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	client := edtapi.NewReportsClient(newTestGateway(t, server.URL))

	result, err := client.ExportSchedules(context.Background(), edtapi.ExportParams{
		Format:       "pdf",
		StartDate:    "2026-09-01",
		EndDate:      "2026-09-30",
		DepartmentID: pointer.To[int64](5),
	})
	require.NoError(t, err)
	defer result.Body.Close()

	assert.Equal(t, "edt_export.pdf", result.Filename)
	raw, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(raw))
}

/*
TestReportsClient_ImportExcel sends a multipart upload and decodes the
import summary.
*/
func TestReportsClient_ImportExcel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/import/excel/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "teachers", r.FormValue("type"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "enseignants.xlsx", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success_count": 12, "errors": [], "warnings": ["ligne 3 ignorée"]}`))
	}))
	defer server.Close()

	client := edtapi.NewReportsClient(newTestGateway(t, server.URL))

	result, err := client.ImportExcel(context.Background(), "teachers", "enseignants.xlsx", strings.NewReader("fake xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 12, result.SuccessCount)
	assert.Len(t, result.Warnings, 1)
}
