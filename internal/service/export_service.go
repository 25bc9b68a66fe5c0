package service

import (
	"fmt"
	"io"
	"stem_dashboard/internal/model"

	"github.com/xuri/excelize/v2"
)

// ExportService 把当前显示的两个图表数据导出为 xlsx，每个图表一个工作表
type ExportService struct {
	Dashboard *DashboardService
}

func NewExportService(dashboard *DashboardService) *ExportService {
	return &ExportService{Dashboard: dashboard}
}

func (s *ExportService) Filename() string {
	sel := s.Dashboard.Selector.Current()
	return fmt.Sprintf("stem_center_%s_%s.xlsx", sel.Kind, sanitizeFilename(sel.Value))
}

func (s *ExportService) WriteWorkbook(w io.Writer) error {
	view := s.Dashboard.View()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ChartDemand); err != nil {
		return err
	}
	if err := writeDatasetSheet(f, ChartDemand, view.Interval, "num_requests", view.Demand); err != nil {
		return err
	}

	if _, err := f.NewSheet(ChartWaitTime); err != nil {
		return err
	}
	if err := writeDatasetSheet(f, ChartWaitTime, view.Interval, "wait_time", view.WaitTime); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeDatasetSheet(f *excelize.File, sheet, interval, valueHeader string, ds model.ChartDataset) error {
	if interval == "" {
		interval = "label"
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{interval, valueHeader}); err != nil {
		return err
	}
	for i, label := range ds.Labels {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{label, ds.Values[i]}); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
