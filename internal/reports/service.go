package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/event"
)

// auditPageSize is the page size used to drain the audit log.
const auditPageSize = 500

// EventSource is the event query layer the participation report reads.
type EventSource interface {
	FetchEvents(ctx context.Context, f event.EventFilter) (event.EventPage, error)
}

// ReportService collects report rows and hands them to the exporter.
type ReportService interface {
	GetEventsReport(ctx context.Context, req EventsReportRequest) (ReportData, error)
	ExportEventsReport(ctx context.Context, req EventsReportRequest, userID *uint, ip string) ([]byte, string, string, error)

	GetAuditLogsReport(ctx context.Context, req AuditLogReportRequest) (ReportData, error)
	ExportAuditLogsReport(ctx context.Context, req AuditLogReportRequest, userID *uint, ip string) ([]byte, string, string, error)
}

type reportService struct {
	events   EventSource
	exporter ReportExporter
	auditSvc auditlog.Service
	now      func() time.Time
}

func NewReportService(events EventSource, exporter ReportExporter, auditSvc auditlog.Service) ReportService {
	return &reportService{
		events:   events,
		exporter: exporter,
		auditSvc: auditSvc,
		now:      time.Now,
	}
}

// ===============================
// Event participation
// ===============================

func (s *reportService) GetEventsReport(ctx context.Context, req EventsReportRequest) (ReportData, error) {
	filter := event.EventFilter{
		FilterCriteria: event.FilterCriteria{
			DesignerID:            req.DesignerID,
			BoutiqueID:            req.BoutiqueID,
			OnlyWithRegistrations: req.OnlyWithRegistrations,
		},
		OnlyActive: req.OnlyActive,
		Page:       1,
		PageSize:   event.MaxPageSize,
	}

	var data ReportData
	for {
		page, err := s.events.FetchEvents(ctx, filter)
		if err != nil {
			return ReportData{}, err
		}
		for _, ev := range page.Events {
			data.Events = append(data.Events, EventReportRow{
				ID:                ev.ID,
				Code:              ev.Code,
				Name:              ev.Name,
				StartDate:         ev.StartDate,
				EndDate:           ev.EndDate,
				IsActive:          ev.IsActive,
				RegistrationCount: ev.RegistrationCount,
				AssignmentCount:   ev.AssignmentCount,
			})
			for _, rec := range ev.Records {
				row := ParticipationRow{
					EventCode: ev.Code,
					Kind:      string(rec.Kind()),
					MallID:    rec.MallID,
					ProductID: rec.ProductID,
				}
				if rec.Designer != nil {
					row.DesignerName = rec.Designer.Name
				}
				if rec.Boutique != nil {
					row.BoutiqueName = rec.Boutique.Name
				}
				data.Participation = append(data.Participation, row)
			}
		}
		if !page.HasNext {
			break
		}
		filter.Page++
	}
	return data, nil
}

func (s *reportService) ExportEventsReport(ctx context.Context, req EventsReportRequest, userID *uint, ip string) ([]byte, string, string, error) {
	details := map[string]interface{}{
		"report_type": ReportTypeEvents,
		"format":      req.Format,
		"only_active": req.OnlyActive,
	}

	data, err := s.GetEventsReport(ctx, req)
	if err != nil {
		details["error"] = err.Error()
		s.audit(ctx, userID, "EVENTS_REPORT_DOWNLOADED", details, ip, auditlog.StatusFailure)
		return nil, "", "", err
	}

	out, name, mime, err := s.exporter.Export(ReportTypeEvents, req.Format, data)
	if err != nil {
		details["error"] = err.Error()
		s.audit(ctx, userID, "EVENTS_REPORT_DOWNLOADED", details, ip, auditlog.StatusFailure)
		return nil, "", "", err
	}

	details["event_count"] = len(data.Events)
	s.audit(ctx, userID, "EVENTS_REPORT_DOWNLOADED", details, ip, auditlog.StatusSuccess)
	return out, name, mime, nil
}

// ===============================
// Audit logs
// ===============================

func (s *reportService) GetAuditLogsReport(ctx context.Context, req AuditLogReportRequest) (ReportData, error) {
	if s.auditSvc == nil {
		return ReportData{}, fmt.Errorf("audit log is not available")
	}
	from, to, err := GetDateRange(s.now(), req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return ReportData{}, err
	}

	filter := auditlog.AuditLogFilter{
		Action:   req.Action,
		Status:   req.Status,
		FromDate: &from,
		ToDate:   &to,
		Page:     1,
		Limit:    auditPageSize,
	}

	var data ReportData
	for {
		page, err := s.auditSvc.GetAuditLogs(ctx, filter)
		if err != nil {
			return ReportData{}, err
		}
		for _, l := range page.Data {
			row := AuditLogReportRow{
				ID:        l.ID,
				UserID:    l.UserID,
				Action:    l.Action,
				Status:    l.Status,
				IPAddress: l.IPAddress,
				Timestamp: l.CreatedAt,
				Details:   l.Details,
			}
			if l.UserName != nil {
				row.UserName = *l.UserName
			}
			if l.EventName != nil {
				row.EventName = *l.EventName
			}
			data.AuditLogs = append(data.AuditLogs, row)
		}
		if filter.Page >= page.TotalPages {
			break
		}
		filter.Page++
	}
	return data, nil
}

func (s *reportService) ExportAuditLogsReport(ctx context.Context, req AuditLogReportRequest, userID *uint, ip string) ([]byte, string, string, error) {
	details := map[string]interface{}{
		"report_type": ReportTypeAuditLogs,
		"format":      req.Format,
		"date_range":  req.DateRange,
	}

	data, err := s.GetAuditLogsReport(ctx, req)
	if err == nil {
		var out []byte
		var name, mime string
		out, name, mime, err = s.exporter.Export(ReportTypeAuditLogs, req.Format, data)
		if err == nil {
			details["row_count"] = len(data.AuditLogs)
			s.audit(ctx, userID, "AUDIT_LOGS_REPORT_DOWNLOADED", details, ip, auditlog.StatusSuccess)
			return out, name, mime, nil
		}
	}

	details["error"] = err.Error()
	s.audit(ctx, userID, "AUDIT_LOGS_REPORT_DOWNLOADED", details, ip, auditlog.StatusFailure)
	return nil, "", "", err
}

func (s *reportService) audit(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, userID, nil, action, details, ip, status); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}
