// Copyright (c) 2026 Planora. All rights reserved.

package edtapi

import (
	"context"
	"io"

	"github.com/planora/edt-client/internal/gateway"
)

// ReportsClient talks to the backend's reports application: exports, bulk
// imports, and dashboard analytics.
type ReportsClient struct {
	gw *gateway.Gateway
}

// NewReportsClient builds the reports client over the shared gateway.
func NewReportsClient(gw *gateway.Gateway) *ReportsClient {
	return &ReportsClient{gw: gw}
}

// ExportSchedules downloads a schedule export in the requested format.
// The caller owns the returned body.
func (c *ReportsClient) ExportSchedules(ctx context.Context, params ExportParams) (*gateway.DownloadResult, error) {
	return c.gw.PostDownload(ctx, "/api/reports/export/schedules/", params)
}

// ExportTeacherWorkload downloads a per-teacher workload export.
func (c *ReportsClient) ExportTeacherWorkload(ctx context.Context, params ExportParams) (*gateway.DownloadResult, error) {
	return c.gw.PostDownload(ctx, "/api/reports/export/teacher-workload/", params)
}

// ImportExcel uploads a spreadsheet for bulk import. kind is "teachers",
// "students", or "schedules".
func (c *ReportsClient) ImportExcel(ctx context.Context, kind, filename string, content io.Reader) (*ImportResult, error) {
	var result ImportResult
	extra := map[string]string{"type": kind}
	if err := c.gw.Upload(ctx, "/api/reports/import/excel/", "file", filename, content, extra, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportTemplate downloads the blank spreadsheet template for kind.
func (c *ReportsClient) ImportTemplate(ctx context.Context, kind string) (*gateway.DownloadResult, error) {
	return c.gw.Download(ctx, "/api/reports/import/template/?type="+kind)
}

// DashboardAnalytics fetches the aggregate counters for the dashboard. The
// shape varies by role, so it stays a loose map and the shell forwards it
// untouched.
func (c *ReportsClient) DashboardAnalytics(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.gw.Get(ctx, "/api/reports/analytics/dashboard/", &out); err != nil {
		return nil, err
	}
	return out, nil
}
