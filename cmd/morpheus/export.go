package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morpheus-mall/mall-backend/database"
	"github.com/morpheus-mall/mall-backend/internal/event"
	"github.com/morpheus-mall/mall-backend/internal/notification"
	"github.com/morpheus-mall/mall-backend/internal/reports"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write the event participation report to a file",
	Example: "  morpheus export --format excel --only-active --dir ./out",
	RunE:    runExport,
}

func init() {
	addExportFlags(exportCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", reports.FormatCSV, "csv, excel or pdf")
	cmd.Flags().Bool("only-active", false, "only events running today")
	cmd.Flags().Bool("only-with-registrations", false, "only events with registrations")
	cmd.Flags().Uint("designer", 0, "only events the designer is registered for")
	cmd.Flags().Uint("boutique", 0, "only events the boutique is registered for")
	cmd.Flags().String("dir", ".", "output directory")
}

func exportRequest(cmd *cobra.Command) (reports.EventsReportRequest, error) {
	var req reports.EventsReportRequest
	var err error
	flags := cmd.Flags()
	if req.Format, err = flags.GetString("format"); err != nil {
		return req, err
	}
	if req.OnlyActive, err = flags.GetBool("only-active"); err != nil {
		return req, err
	}
	if req.OnlyWithRegistrations, err = flags.GetBool("only-with-registrations"); err != nil {
		return req, err
	}
	if req.DesignerID, err = optionalUint(cmd, "designer"); err != nil {
		return req, err
	}
	if req.BoutiqueID, err = optionalUint(cmd, "boutique"); err != nil {
		return req, err
	}
	switch req.Format {
	case reports.FormatCSV, reports.FormatExcel, reports.FormatPDF:
	default:
		return req, fmt.Errorf("unsupported format %q", req.Format)
	}
	return req, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	req, err := exportRequest(cmd)
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	db, err := database.Connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	events := event.NewService(event.NewRepository(db), nil, notification.NopPublisher{}, nil)
	svc := reports.NewReportService(events, reports.NewReportExporter(), nil)

	data, name, _, err := svc.ExportEventsReport(cmd.Context(), req, nil, "cli")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
