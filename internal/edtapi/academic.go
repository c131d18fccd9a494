// Copyright (c) 2026 Planora. All rights reserved.

package edtapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/planora/edt-client/internal/gateway"
	"github.com/planora/edt-client/pkg/pagination"
)

// AcademicClient talks to the backend's academic application: departments,
// programs, subjects, and rooms.
type AcademicClient struct {
	gw *gateway.Gateway
}

// NewAcademicClient builds the academic client over the shared gateway.
func NewAcademicClient(gw *gateway.Gateway) *AcademicClient {
	return &AcademicClient{gw: gw}
}

// # Departments

// Departments lists all departments.
func (c *AcademicClient) Departments(ctx context.Context) ([]Department, error) {
	var page pagination.Page[Department]
	if err := c.gw.Get(ctx, "/api/academic/departments/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateDepartment creates a department.
func (c *AcademicClient) CreateDepartment(ctx context.Context, dept Department) (*Department, error) {
	var created Department
	if err := c.gw.Post(ctx, "/api/academic/departments/", dept, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDepartment patches an existing department.
func (c *AcademicClient) UpdateDepartment(ctx context.Context, id int64, dept Department) (*Department, error) {
	var updated Department
	path := fmt.Sprintf("/api/academic/departments/%d/", id)
	if err := c.gw.Patch(ctx, path, dept, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDepartment removes a department.
func (c *AcademicClient) DeleteDepartment(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/api/academic/departments/%d/", id), nil)
}

// # Programs

// Programs lists programs, optionally filtered by department.
func (c *AcademicClient) Programs(ctx context.Context, departmentID int64) ([]Program, error) {
	path := "/api/academic/programs/"
	if departmentID > 0 {
		path += "?department=" + strconv.FormatInt(departmentID, 10)
	}

	var page pagination.Page[Program]
	if err := c.gw.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateProgram creates a program.
func (c *AcademicClient) CreateProgram(ctx context.Context, program Program) (*Program, error) {
	var created Program
	if err := c.gw.Post(ctx, "/api/academic/programs/", program, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProgram patches an existing program.
func (c *AcademicClient) UpdateProgram(ctx context.Context, id int64, program Program) (*Program, error) {
	var updated Program
	path := fmt.Sprintf("/api/academic/programs/%d/", id)
	if err := c.gw.Patch(ctx, path, program, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProgram removes a program.
func (c *AcademicClient) DeleteProgram(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/api/academic/programs/%d/", id), nil)
}

// # Subjects

// Subjects lists subjects, optionally filtered by department.
func (c *AcademicClient) Subjects(ctx context.Context, departmentID int64) ([]Subject, error) {
	path := "/api/academic/subjects/"
	if departmentID > 0 {
		path += "?department=" + strconv.FormatInt(departmentID, 10)
	}

	var page pagination.Page[Subject]
	if err := c.gw.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateSubject creates a subject.
func (c *AcademicClient) CreateSubject(ctx context.Context, subject Subject) (*Subject, error) {
	var created Subject
	if err := c.gw.Post(ctx, "/api/academic/subjects/", subject, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSubject patches an existing subject.
func (c *AcademicClient) UpdateSubject(ctx context.Context, id int64, subject Subject) (*Subject, error) {
	var updated Subject
	path := fmt.Sprintf("/api/academic/subjects/%d/", id)
	if err := c.gw.Patch(ctx, path, subject, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSubject removes a subject.
func (c *AcademicClient) DeleteSubject(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/api/academic/subjects/%d/", id), nil)
}

// # Rooms

// Rooms lists all rooms.
func (c *AcademicClient) Rooms(ctx context.Context) ([]Room, error) {
	var page pagination.Page[Room]
	if err := c.gw.Get(ctx, "/api/academic/rooms/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateRoom creates a room.
func (c *AcademicClient) CreateRoom(ctx context.Context, room Room) (*Room, error) {
	var created Room
	if err := c.gw.Post(ctx, "/api/academic/rooms/", room, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRoom patches an existing room.
func (c *AcademicClient) UpdateRoom(ctx context.Context, id int64, room Room) (*Room, error) {
	var updated Room
	path := fmt.Sprintf("/api/academic/rooms/%d/", id)
	if err := c.gw.Patch(ctx, path, room, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRoom removes a room.
func (c *AcademicClient) DeleteRoom(ctx context.Context, id int64) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/api/academic/rooms/%d/", id), nil)
}

// RoomFilter narrows the available-room search.
type RoomFilter struct {
	Capacity  int
	Date      string
	StartTime string
	EndTime   string
}

// AvailableRooms lists rooms free for the given window.
func (c *AcademicClient) AvailableRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	values := url.Values{}
	if filter.Capacity > 0 {
		values.Set("capacity", strconv.Itoa(filter.Capacity))
	}
	if filter.Date != "" {
		values.Set("date", filter.Date)
	}
	if filter.StartTime != "" {
		values.Set("start_time", filter.StartTime)
	}
	if filter.EndTime != "" {
		values.Set("end_time", filter.EndTime)
	}

	path := "/api/academic/rooms/available/"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page pagination.Page[Room]
	if err := c.gw.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
