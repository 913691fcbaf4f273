package reports

import (
	"time"
)

const (
	ReportTypeEvents    = "events"
	ReportTypeAuditLogs = "audit-logs"

	// Date range presets for the audit log report
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeYearly  = "yearly"
	DateRangeCustom  = "custom"

	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// EventsReportRequest selects the events exported by the participation report.
type EventsReportRequest struct {
	Format                string `form:"format"`
	DesignerID            *uint  `form:"designer_id"`
	BoutiqueID            *uint  `form:"boutique_id"`
	OnlyWithRegistrations bool   `form:"only_with_registrations"`
	OnlyActive            bool   `form:"only_active"`
}

type AuditLogReportRequest struct {
	Format    string `form:"format"`
	DateRange string `form:"date_range"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Action    string `form:"action"`
	Status    string `form:"status"`
}

// EventReportRow is one event with its participation counts.
type EventReportRow struct {
	ID                uint      `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	IsActive          bool      `json:"is_active"`
	RegistrationCount int       `json:"registration_count"`
	AssignmentCount   int       `json:"assignment_count"`
}

// ParticipationRow is one event_detail row of an exported event.
type ParticipationRow struct {
	EventCode    string `json:"event_code"`
	Kind         string `json:"kind"`
	DesignerName string `json:"designer_name"`
	BoutiqueName string `json:"boutique_name"`
	MallID       *uint  `json:"mall_id"`
	ProductID    *uint  `json:"product_id"`
}

type AuditLogReportRow struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	UserName  string    `json:"user_name"`
	EventName string    `json:"event_name"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// ReportData is what a JSON preview returns and what the exporter renders.
type ReportData struct {
	Events        []EventReportRow    `json:"events,omitempty"`
	Participation []ParticipationRow  `json:"participation,omitempty"`
	AuditLogs     []AuditLogReportRow `json:"audit_logs,omitempty"`
}
