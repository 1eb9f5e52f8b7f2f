package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
)

// exportService implements the ExportService interface
type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

// NewExportService creates the export service
func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

const exportBatchSize = 500

var grievanceReportHeaders = []string{
	"ID", "Title", "Category", "Priority", "Status",
	"Submitted By", "Assignee", "Remark", "Created At", "Updated At",
}

// ExportGrievanceReport renders the filtered grievance list as an xlsx
// workbook; overseers only. Rows are fetched in batches so a large
// export does not load the whole table at once.
func (s *exportService) ExportGrievanceReport(ctx context.Context, filters repositories.GrievanceFilters, userID string) ([]byte, error) {
	s.logger.Info("exporting grievance report", "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Grievances"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, header := range grievanceReportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(grievanceReportHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	filters.Limit = exportBatchSize
	filters.Offset = 0
	row := 2
	exported := 0

	for {
		grievances, total, err := s.repo.Grievance().List(ctx, nil, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list grievances: %w", err)
		}

		for _, g := range grievances {
			if err := s.writeGrievanceRow(f, sheet, row, g); err != nil {
				return nil, err
			}
			row++
			exported++
		}

		filters.Offset += exportBatchSize
		if len(grievances) < exportBatchSize || int64(filters.Offset) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("grievance report exported", "user_id", userID, "rows", exported)
	return buf.Bytes(), nil
}

func (s *exportService) writeGrievanceRow(f *excelize.File, sheet string, row int, g *models.Grievance) error {
	assignee := ""
	if g.Assignee != nil {
		assignee = g.Assignee.FullName
	}
	remark := ""
	if g.Remark != nil {
		remark = *g.Remark
	}
	submitter := g.Submitter.FullName
	if submitter == "" {
		submitter = g.SubmittedBy
	}

	values := []interface{}{
		g.ID,
		g.Title,
		string(g.Category),
		string(g.Priority),
		string(g.Status),
		submitter,
		assignee,
		strings.TrimSpace(remark),
		g.CreatedAt.Format("2006-01-02 15:04:05"),
		g.UpdatedAt.Format("2006-01-02 15:04:05"),
	}

	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	return nil
}
