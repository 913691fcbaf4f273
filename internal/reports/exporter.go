package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	mimeCSV   = "text/csv"
	mimeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF   = "application/pdf"
)

// ReportExporter renders report data as a downloadable file. It returns the
// bytes, a file name and the content type.
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct {
	now func() time.Time
}

func NewReportExporter() ReportExporter {
	return &reportExporter{now: time.Now}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := e.now().Format("20060102_150405")

	var (
		out []byte
		err error
	)
	switch reportType {
	case ReportTypeEvents:
		switch format {
		case FormatCSV:
			out, err = e.exportEventsCSV(data.Events)
		case FormatExcel:
			out, err = e.exportEventsExcel(data.Events, data.Participation)
		case FormatPDF:
			out, err = e.exportEventsPDF(data.Events)
		default:
			return nil, "", "", fmt.Errorf("unsupported format for events: %s", format)
		}
	case ReportTypeAuditLogs:
		switch format {
		case FormatCSV:
			out, err = e.exportAuditLogsCSV(data.AuditLogs)
		case FormatExcel:
			out, err = e.exportAuditLogsExcel(data.AuditLogs)
		case FormatPDF:
			out, err = e.exportAuditLogsPDF(data.AuditLogs)
		default:
			return nil, "", "", fmt.Errorf("unsupported format for audit logs: %s", format)
		}
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
	if err != nil {
		return nil, "", "", err
	}

	base := fmt.Sprintf("%s_report_%s", reportType, timestamp)
	switch format {
	case FormatExcel:
		return out, base + ".xlsx", mimeExcel, nil
	case FormatPDF:
		return out, base + ".pdf", mimePDF, nil
	default:
		return out, base + ".csv", mimeCSV, nil
	}
}

// ============================
// Events

var eventHeaders = []string{"ID", "Code", "Name", "Start Date", "End Date", "Active", "Registrations", "Assignments"}

func eventRecord(ev EventReportRow) []string {
	return []string{
		strconv.FormatUint(uint64(ev.ID), 10),
		ev.Code,
		ev.Name,
		ev.StartDate.Format(time.DateOnly),
		ev.EndDate.Format(time.DateOnly),
		strconv.FormatBool(ev.IsActive),
		strconv.Itoa(ev.RegistrationCount),
		strconv.Itoa(ev.AssignmentCount),
	}
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func (e *reportExporter) exportEventsCSV(events []EventReportRow) ([]byte, error) {
	records := make([][]string, 0, len(events)+1)
	records = append(records, eventHeaders)
	for _, ev := range events {
		records = append(records, eventRecord(ev))
	}
	return writeCSV(records)
}

func (e *reportExporter) exportEventsExcel(events []EventReportRow, participation []ParticipationRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const eventsSheet = "Events"
	if err := f.SetSheetName("Sheet1", eventsSheet); err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, eventRecord(ev))
	}
	if err := fillSheet(f, eventsSheet, eventHeaders, rows); err != nil {
		return nil, err
	}

	const participationSheet = "Participation"
	if _, err := f.NewSheet(participationSheet); err != nil {
		return nil, err
	}
	rows = rows[:0]
	for _, p := range participation {
		rows = append(rows, []string{p.EventCode, p.Kind, p.DesignerName, p.BoutiqueName, optionalID(p.MallID), optionalID(p.ProductID)})
	}
	if err := fillSheet(f, participationSheet, []string{"Event", "Kind", "Designer", "Boutique", "Mall ID", "Product ID"}, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventsPDF(events []EventReportRow) ([]byte, error) {
	pdf := newPDF("Event Participation Report")

	widths := []float64{15, 30, 70, 30, 30, 20, 30, 30}
	tableHeader(pdf, widths, eventHeaders)

	pdf.SetFont("Arial", "", 8)
	for _, ev := range events {
		for i, v := range eventRecord(ev) {
			align := "L"
			if i == 0 || i >= 5 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	return finishPDF(pdf)
}

// ============================
// Audit logs

var auditHeaders = []string{"ID", "User ID", "User Name", "Event", "Action", "Status", "IP Address", "Timestamp", "Details"}

func auditRecord(l AuditLogReportRow) []string {
	return []string{
		strconv.FormatUint(uint64(l.ID), 10),
		optionalID(l.UserID),
		l.UserName,
		l.EventName,
		l.Action,
		l.Status,
		l.IPAddress,
		l.Timestamp.Format("2006-01-02 15:04:05"),
		l.Details,
	}
}

func (e *reportExporter) exportAuditLogsCSV(logs []AuditLogReportRow) ([]byte, error) {
	records := make([][]string, 0, len(logs)+1)
	records = append(records, auditHeaders)
	for _, l := range logs {
		records = append(records, auditRecord(l))
	}
	return writeCSV(records)
}

func (e *reportExporter) exportAuditLogsExcel(logs []AuditLogReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Audit Logs"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, auditRecord(l))
	}
	if err := fillSheet(f, sheet, auditHeaders, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAuditLogsPDF(logs []AuditLogReportRow) ([]byte, error) {
	pdf := newPDF("Audit Logs Report")

	// details are left out of the PDF, they rarely fit a row
	headers := auditHeaders[:8]
	widths := []float64{12, 15, 40, 40, 50, 20, 30, 40}
	tableHeader(pdf, widths, headers)

	pdf.SetFont("Arial", "", 7)
	for _, l := range logs {
		for i, v := range auditRecord(l)[:8] {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return finishPDF(pdf)
}

// ============================
// Helpers

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func newPDF(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}

func finishPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
