package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
	"alumni-talent-platform/pkg/security"

	"github.com/xuri/excelize/v2"
)

// maxExportRows caps a single export; narrower filters are needed beyond it.
const maxExportRows = 10000

var exportHeaders = []string{
	"ID", "KIND", "STATUS", "NAME", "EMAIL", "PHONE",
	"STUDENT ID", "DEPARTMENT", "GRADUATION YEAR", "DEGREE",
	"COMPANY NAME", "TAX ID",
	"REJECTION REASON", "SUBMITTED AT", "DECIDED AT",
}

// Export writes every registration matching filter to xlsx (default) or csv.
func (uc *registrationUsecase) Export(ctx context.Context, actor *domain.User, filter domain.RegistrationFilter, format string) (*domain.ExportFile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, apperror.Validation("format", "format: 僅支援 xlsx 或 csv")
	}

	regs, err := uc.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, exportRow(r))
	}

	stamp := uc.now().Format("20060102_150405")
	var file *domain.ExportFile
	if format == "csv" {
		file, err = exportCSV(rows, stamp)
	} else {
		file, err = exportExcel(rows, stamp)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.audit.Log(ctx, security.SecurityEvent{
		Event:   security.EventDataExport,
		ActorID: actor.ID,
		Details: map[string]interface{}{"rows": len(rows), "format": file.ContentType},
	})
	return file, nil
}

// collect pages through the repository directly so exports never come
// from the list cache.
func (uc *registrationUsecase) collect(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, error) {
	filter.Page = 1
	filter.Limit = 100
	var all []domain.Registration
	for len(all) < maxExportRows {
		items, total, err := uc.regRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < filter.Limit || len(all) >= total {
			break
		}
		filter.Page++
	}
	if len(all) > maxExportRows {
		all = all[:maxExportRows]
	}
	return all, nil
}

func exportRow(r domain.Registration) []interface{} {
	row := []interface{}{r.ID, string(r.Kind), string(r.Status), r.Name, r.Email, r.Phone}
	if r.Alumni != nil {
		var year interface{} = ""
		if r.Alumni.GraduationYear > 0 {
			year = r.Alumni.GraduationYear
		}
		row = append(row, r.Alumni.StudentID, r.Alumni.Department, year, r.Alumni.Degree)
	} else {
		row = append(row, "", "", "", "")
	}
	if r.Company != nil {
		row = append(row, r.Company.CompanyName, r.Company.TaxID)
	} else {
		row = append(row, "", "")
	}

	reason := ""
	if r.RejectionReason != nil {
		reason = *r.RejectionReason
	}
	decided := ""
	if r.ApprovedAt != nil {
		decided = r.ApprovedAt.Format(time.RFC3339)
	} else if r.RejectedAt != nil {
		decided = r.RejectedAt.Format(time.RFC3339)
	}
	return append(row, reason, r.CreatedAt.Format(time.RFC3339), decided)
}

func exportExcel(rows [][]interface{}, stamp string) (*domain.ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Registrations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return &domain.ExportFile{
		Filename:    fmt.Sprintf("registrations_%s.xlsx", stamp),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func exportCSV(rows [][]interface{}, stamp string) (*domain.ExportFile, error) {
	var buf bytes.Buffer
	// UTF-8 BOM so Excel opens Chinese text correctly.
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	record := make([]string, len(exportHeaders))
	for _, row := range rows {
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &domain.ExportFile{
		Filename:    fmt.Sprintf("registrations_%s.csv", stamp),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}
