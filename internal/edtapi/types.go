// Copyright (c) 2026 Planora. All rights reserved.

/*
Package edtapi contains the typed clients for the timetable backend.

# Architecture

Each backend application gets one client: auth, academic, scheduling,
notifications, reports. Every client is a thin layer over the
[gateway.Gateway] — it owns the endpoint paths and the request/response
types, and nothing else. Session-lifecycle behavior (refresh, forced
logout, error classification) lives entirely in the gateway.

The JSON tags on these types mirror the backend serializers verbatim;
renaming a field here breaks decoding, not compilation.
*/
package edtapi

// # Academic Resources

// Department is an academic department.
type Department struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	Head          *int64  `json:"head,omitempty"`
	HeadName      *string `json:"head_name,omitempty"`
	ProgramsCount int     `json:"programs_count"`
	TeachersCount int     `json:"teachers_count"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
}

// Program is a degree program (filière) within a department.
type Program struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Code                 string  `json:"code"`
	Level                string  `json:"level"` // L1..L3, M1, M2, D1..D3
	LevelDisplay         string  `json:"level_display"`
	DurationYears        int     `json:"duration_years"`
	Department           int64   `json:"department"`
	DepartmentName       string  `json:"department_name"`
	Head                 *int64  `json:"head,omitempty"`
	HeadName             *string `json:"head_name,omitempty"`
	MaxStudents          int     `json:"max_students"`
	CurrentStudentsCount int     `json:"current_students_count"`
	Description          string  `json:"description,omitempty"`
	IsActive             bool    `json:"is_active"`
	CreatedAt            string  `json:"created_at"`
}

// SubjectTeacher is the abbreviated teacher reference embedded in a subject.
type SubjectTeacher struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

// Subject is a taught course unit.
type Subject struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Code               string           `json:"code"`
	Description        string           `json:"description,omitempty"`
	SubjectType        string           `json:"subject_type"` // COURSE, TD, TP, PROJECT, SEMINAR
	SubjectTypeDisplay string           `json:"subject_type_display"`
	Credits            int              `json:"credits"`
	HoursPerWeek       int              `json:"hours_per_week"`
	Department         int64            `json:"department"`
	DepartmentName     string           `json:"department_name"`
	AssignedTeachers   []SubjectTeacher `json:"assigned_teachers"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          string           `json:"created_at"`
}

// Room is a teaching room.
type Room struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	RoomType        string  `json:"room_type"` // AMPHITHEATER, CLASSROOM, LAB, ...
	RoomTypeDisplay string  `json:"room_type_display"`
	Capacity        int     `json:"capacity"`
	Building        string  `json:"building"`
	Floor           string  `json:"floor"`
	Equipment       string  `json:"equipment,omitempty"`
	Department      *int64  `json:"department,omitempty"`
	DepartmentName  *string `json:"department_name,omitempty"`
	IsAvailable     bool    `json:"is_available"`
	IsActive        bool    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
}

// # Scheduling Resources

// TimeSlot is a reusable teaching period (e.g. Monday 08:00-10:00).
type TimeSlot struct {
	ID              int64  `json:"id"`
	DayOfWeek       int    `json:"day_of_week"` // 0 = Monday
	DayDisplay      string `json:"day_display"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Name            string `json:"name,omitempty"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

// ScheduleProgram links a schedule entry to one of its audiences.
type ScheduleProgram struct {
	ID          int64  `json:"id"`
	Program     int64  `json:"program"`
	ProgramName string `json:"program_name"`
	IsMandatory bool   `json:"is_mandatory"`
}

// Schedule is one recurring timetable entry.
type Schedule struct {
	ID                 int64             `json:"id"`
	Title              string            `json:"title"`
	Subject            int64             `json:"subject"`
	SubjectName        string            `json:"subject_name"`
	Teacher            int64             `json:"teacher"`
	TeacherName        string            `json:"teacher_name"`
	Room               int64             `json:"room"`
	RoomName           string            `json:"room_name"`
	TimeSlot           int64             `json:"time_slot"`
	TimeSlotDisplay    string            `json:"time_slot_display"`
	Programs           []ScheduleProgram `json:"programs_list"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	StudentCount       int               `json:"student_count"`
	Notes              string            `json:"notes,omitempty"`
	IsCancelled        bool              `json:"is_cancelled"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	IsActive           bool              `json:"is_active"`
	CreatedAt          string            `json:"created_at"`
}

// DaySchedule is one day of a weekly view.
type DaySchedule struct {
	Date      string     `json:"date"`
	DayName   string     `json:"day_name"`
	Schedules []Schedule `json:"schedules"`
}

// WeeklySchedule is the backend's pre-grouped week view. Keys of Days are
// day-of-week indexes (0 = Monday) serialized as strings.
type WeeklySchedule struct {
	WeekStart string                 `json:"week_start"`
	WeekEnd   string                 `json:"week_end"`
	Days      map[string]DaySchedule `json:"schedule"`
}

// TeacherUnavailability is a declared period during which a teacher cannot
// be scheduled.
type TeacherUnavailability struct {
	ID                        int64  `json:"id"`
	Teacher                   int64  `json:"teacher"`
	TeacherName               string `json:"teacher_name"`
	StartDate                 string `json:"start_date"`
	EndDate                   string `json:"end_date"`
	StartTime                 string `json:"start_time,omitempty"`
	EndTime                   string `json:"end_time,omitempty"`
	UnavailabilityType        string `json:"unavailability_type"`
	UnavailabilityTypeDisplay string `json:"unavailability_type_display"`
	Reason                    string `json:"reason"`
	IsAllDay                  bool   `json:"is_all_day"`
	IsActive                  bool   `json:"is_active"`
	CreatedAt                 string `json:"created_at"`
}

// MakeupSession is a proposed replacement for a cancelled schedule entry.
type MakeupSession struct {
	ID                  int64   `json:"id"`
	OriginalSchedule    int64   `json:"original_schedule"`
	OriginalSubject     string  `json:"original_subject"`
	OriginalTeacher     string  `json:"original_teacher"`
	ProposedDate        string  `json:"proposed_date"`
	ProposedTimeSlot    int64   `json:"proposed_time_slot"`
	ProposedTimeDisplay string  `json:"proposed_time_display"`
	ProposedRoom        int64   `json:"proposed_room"`
	ProposedRoomName    string  `json:"proposed_room_name"`
	Status              string  `json:"status"` // PENDING, APPROVED, REJECTED, COMPLETED
	StatusDisplay       string  `json:"status_display"`
	Reason              string  `json:"reason"`
	ApprovedBy          *int64  `json:"approved_by,omitempty"`
	ApprovedByName      *string `json:"approved_by_name,omitempty"`
	ApprovalDate        string  `json:"approval_date,omitempty"`
	IsActive            bool    `json:"is_active"`
	CreatedAt           string  `json:"created_at"`
}

// ConflictCheck is the result of a dry-run conflict validation for a draft
// schedule entry.
type ConflictCheck struct {
	HasConflicts bool       `json:"has_conflicts"`
	Conflicts    []Conflict `json:"conflicts"`
}

// Conflict describes one collision found by the backend.
type Conflict struct {
	Type        string `json:"type"` // room, teacher, program
	Message     string `json:"message"`
	Schedule    int64  `json:"schedule,omitempty"`
	Description string `json:"description,omitempty"`
}

// # Notification Resources

// Notification is one delivered in-app notification.
type Notification struct {
	ID                      int64  `json:"id"`
	NotificationType        string `json:"notification_type"`
	NotificationTypeDisplay string `json:"notification_type_display"`
	Title                   string `json:"title"`
	Message                 string `json:"message"`
	Priority                string `json:"priority"`
	PriorityDisplay         string `json:"priority_display"`
	Schedule                *int64 `json:"schedule,omitempty"`
	ScheduleTitle           string `json:"schedule_title,omitempty"`
	MakeupSession           *int64 `json:"makeup_session,omitempty"`
	IsRead                  bool   `json:"is_read"`
	ReadAt                  string `json:"read_at,omitempty"`
	CreatedAt               string `json:"created_at"`
}

// NotificationPreference holds the per-user delivery settings.
type NotificationPreference struct {
	EmailScheduleChanges  bool   `json:"email_schedule_changes"`
	EmailCancellations    bool   `json:"email_cancellations"`
	EmailMakeups          bool   `json:"email_makeups"`
	EmailConflicts        bool   `json:"email_conflicts"`
	SMSUrgentOnly         bool   `json:"sms_urgent_only"`
	SMSCancellations      bool   `json:"sms_cancellations"`
	PushAll               bool   `json:"push_all"`
	PushScheduleChanges   bool   `json:"push_schedule_changes"`
	PushReminders         bool   `json:"push_reminders"`
	ReminderMinutesBefore int    `json:"reminder_minutes_before"`
	QuietHoursStart       string `json:"quiet_hours_start"`
	QuietHoursEnd         string `json:"quiet_hours_end"`
}

// # Report Resources

// ExportParams filters a schedule or workload export.
type ExportParams struct {
	Format       string `json:"format"` // pdf, excel, csv
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	ProgramID    *int64 `json:"program_id,omitempty"`
	TeacherID    *int64 `json:"teacher_id,omitempty"`
}

// ImportResult summarizes an Excel bulk import.
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}
