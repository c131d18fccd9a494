// Copyright (c) 2026 Planora. All rights reserved.

package edtapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/pkg/pagination"
	"github.com/planora/edt-client/pkg/pointer"
)

// SchedulingClient talks to the backend's scheduling application: time slots,
// schedule entries, the weekly view, unavailabilities, and makeup sessions.
type SchedulingClient struct {
	gw *gateway.Gateway
}

// NewSchedulingClient builds the scheduling client over the shared gateway.
func NewSchedulingClient(gw *gateway.Gateway) *SchedulingClient {
	return &SchedulingClient{gw: gw}
}

// # Time Slots

// TimeSlots lists the configured teaching periods.
func (c *SchedulingClient) TimeSlots(ctx context.Context) ([]TimeSlot, error) {
	var page pagination.Page[TimeSlot]
	if err := c.gw.Get(ctx, "/api/scheduling/time-slots/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateTimeSlot creates a teaching period.
func (c *SchedulingClient) CreateTimeSlot(ctx context.Context, slot TimeSlot) (*TimeSlot, error) {
	var created TimeSlot
	if err := c.gw.Post(ctx, "/api/scheduling/time-slots/", slot, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// # Schedules

// ScheduleFilter narrows a schedule listing. Nil ID fields are omitted from
// the query entirely; the backend treats absence and zero differently.
type ScheduleFilter struct {
	ProgramID *int64
	TeacherID *int64
	RoomID    *int64
	StartDate string
	EndDate   string
}

func (f ScheduleFilter) values() url.Values {
	values := url.Values{}
	if f.ProgramID != nil {
		values.Set("program_id", strconv.FormatInt(pointer.Val(f.ProgramID), 10))
	}
	if f.TeacherID != nil {
		values.Set("teacher_id", strconv.FormatInt(pointer.Val(f.TeacherID), 10))
	}
	if f.RoomID != nil {
		values.Set("room_id", strconv.FormatInt(pointer.Val(f.RoomID), 10))
	}
	if f.StartDate != "" {
		values.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		values.Set("end_date", f.EndDate)
	}
	return values
}

func (f ScheduleFilter) query() string {
	if encoded := f.values().Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

// Schedules lists timetable entries matching the filter.
func (c *SchedulingClient) Schedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error) {
	var page pagination.Page[Schedule]
	if err := c.gw.Get(ctx, "/api/scheduling/schedules/"+filter.query(), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateSchedule creates a timetable entry.
func (c *SchedulingClient) CreateSchedule(ctx context.Context, schedule Schedule) (*Schedule, error) {
	var created Schedule
	if err := c.gw.Post(ctx, "/api/scheduling/schedules/", schedule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSchedule patches an existing timetable entry.
func (c *SchedulingClient) UpdateSchedule(ctx context.Context, id int64, schedule Schedule) (*Schedule, error) {
	var updated Schedule
	path := fmt.Sprintf("/api/scheduling/schedules/%d/", id)
	if err := c.gw.Patch(ctx, path, schedule, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSchedule removes a timetable entry.
func (c *SchedulingClient) DeleteSchedule(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/api/scheduling/schedules/%d/", id), nil)
}

// Weekly fetches the backend's pre-grouped week view starting at weekStart
// (an ISO date, always a Monday).
func (c *SchedulingClient) Weekly(ctx context.Context, weekStart string, filter ScheduleFilter) (*WeeklySchedule, error) {
	values := filter.values()
	values.Set("week_start", weekStart)

	var week WeeklySchedule
	if err := c.gw.Get(ctx, "/api/scheduling/schedules/weekly/?"+values.Encode(), &week); err != nil {
		return nil, err
	}
	return &week, nil
}

// CheckConflicts dry-runs a draft entry against the existing timetable.
func (c *SchedulingClient) CheckConflicts(ctx context.Context, draft Schedule) (*ConflictCheck, error) {
	var result ConflictCheck
	if err := c.gw.Post(ctx, "/api/scheduling/schedules/conflicts/check/", draft, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelRequest cancels one schedule entry, optionally proposing a makeup.
type CancelRequest struct {
	Reason       string         `json:"reason"`
	CreateMakeup bool           `json:"create_makeup,omitempty"`
	MakeupData   *MakeupSession `json:"makeup_data,omitempty"`
}

// CancelSchedule cancels a timetable entry.
func (c *SchedulingClient) CancelSchedule(ctx context.Context, id int64, req CancelRequest) error {
	path := fmt.Sprintf("/api/scheduling/schedules/%d/cancel/", id)
	return c.gw.Post(ctx, path, req, nil)
}

// # Personal Views

// TeacherSchedule lists the signed-in teacher's own entries.
func (c *SchedulingClient) TeacherSchedule(ctx context.Context, startDate, endDate string) ([]Schedule, error) {
	values := url.Values{}
	if startDate != "" {
		values.Set("start_date", startDate)
	}
	if endDate != "" {
		values.Set("end_date", endDate)
	}
	path := "/api/scheduling/teacher/schedule/"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page pagination.Page[Schedule]
	if err := c.gw.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// StudentSchedule lists the signed-in student's own entries.
func (c *SchedulingClient) StudentSchedule(ctx context.Context, startDate, endDate string) ([]Schedule, error) {
	values := url.Values{}
	if startDate != "" {
		values.Set("start_date", startDate)
	}
	if endDate != "" {
		values.Set("end_date", endDate)
	}
	path := "/api/scheduling/student/schedule/"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page pagination.Page[Schedule]
	if err := c.gw.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Unavailabilities lists the signed-in teacher's declared absences.
func (c *SchedulingClient) Unavailabilities(ctx context.Context) ([]TeacherUnavailability, error) {
	var page pagination.Page[TeacherUnavailability]
	if err := c.gw.Get(ctx, "/api/scheduling/teacher/unavailabilities/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateUnavailability declares a new absence period.
func (c *SchedulingClient) CreateUnavailability(ctx context.Context, u TeacherUnavailability) (*TeacherUnavailability, error) {
	var created TeacherUnavailability
	if err := c.gw.Post(ctx, "/api/scheduling/teacher/unavailabilities/", u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// # Makeup Sessions

// MakeupSessions lists replacement session proposals.
func (c *SchedulingClient) MakeupSessions(ctx context.Context) ([]MakeupSession, error) {
	var page pagination.Page[MakeupSession]
	if err := c.gw.Get(ctx, "/api/scheduling/makeup-sessions/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateMakeupSession proposes a replacement session.
func (c *SchedulingClient) CreateMakeupSession(ctx context.Context, m MakeupSession) (*MakeupSession, error) {
	var created MakeupSession
	if err := c.gw.Post(ctx, "/api/scheduling/makeup-sessions/", m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ResolveMakeupSession approves or rejects a proposal. action is "approve"
// or "reject", mirroring the backend endpoint.
func (c *SchedulingClient) ResolveMakeupSession(ctx context.Context, id int64, action string) error {
	path := fmt.Sprintf("/api/scheduling/makeup-sessions/%d/approve/", id)
	return c.gw.Post(ctx, path, map[string]string{"action": action}, nil)
}
