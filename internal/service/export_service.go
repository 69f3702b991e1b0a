package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	exportBatchSize = 1000
	exportSheet     = "Products"
)

// ExportColumns is the product CSV layout. Exports can be re-imported.
var ExportColumns = []string{"sku", "name", "description", "price", "active"}

type ExportService interface {
	// ContentType returns the MIME type for format or ErrInvalidExportFormat.
	ContentType(format string) (string, error)
	Export(ctx context.Context, filter repository.ProductFilter, format string, w io.Writer) error
	// Template writes the CSV header accepted by the importer.
	Template(w io.Writer) error
}

type exportService struct {
	productRepo repository.ProductRepository
}

func NewExportService(repo repository.ProductRepository) ExportService {
	return &exportService{productRepo: repo}
}

func (s *exportService) ContentType(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return "text/csv", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return "", ErrInvalidExportFormat
}

func (s *exportService) Export(ctx context.Context, filter repository.ProductFilter, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return s.exportCSV(ctx, filter, w)
	case FormatXLSX:
		return s.exportXLSX(ctx, filter, w)
	}
	return ErrInvalidExportFormat
}

func (s *exportService) Template(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	if err := cw.Write([]string{"SKU-001", "Sample product", "Optional description", "9.99", "true"}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) exportCSV(ctx context.Context, filter repository.ProductFilter, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	err := s.productRepo.FindInBatches(ctx, filter, exportBatchSize, func(batch []model.Product) error {
		for i := range batch {
			if err := cw.Write(productRecord(&batch[i])); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) exportXLSX(ctx context.Context, filter repository.ProductFilter, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	row := 2
	err = s.productRepo.FindInBatches(ctx, filter, exportBatchSize, func(batch []model.Product) error {
		for i := range batch {
			p := &batch[i]
			var price interface{}
			if p.Price.Valid {
				price = p.Price.Decimal.InexactFloat64()
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, []interface{}{p.SKU, p.Name, p.Description, price, p.Active}); err != nil {
				return err
			}
			row++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func productRecord(p *model.Product) []string {
	price := ""
	if p.Price.Valid {
		price = p.Price.Decimal.StringFixed(2)
	}
	return []string{p.SKU, p.Name, p.Description, price, strconv.FormatBool(p.Active)}
}
