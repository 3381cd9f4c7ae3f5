// Package report renders administrative exports.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/blood-donation-tracker/internal/repository"
)

// DonationSheet is the worksheet name used by DonationsXLSX.
const DonationSheet = "Donations"

// DonationHeader lists the exported columns in order.
var DonationHeader = []string{
	"Donation ID",
	"Donor",
	"Donor Email",
	"Hospital",
	"Request ID",
	"Blood Type",
	"Urgency",
	"Quantity",
	"Status",
	"Donation Date",
	"Created At",
}

var donationColumnWidths = []float64{12, 24, 30, 30, 12, 12, 12, 10, 12, 20, 20}

// DonationsXLSX writes donations to a single-sheet workbook.
func DonationsXLSX(rows []repository.DonationDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(DonationSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F4CCCC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetRow(DonationSheet, "A1", &DonationHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(DonationHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(DonationSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}
	for i, w := range donationColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(DonationSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, d := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			d.ID,
			d.DonorName,
			d.DonorEmail,
			d.HospitalName,
			d.BloodRequestID,
			string(d.BloodType),
			string(d.Urgency),
			d.Quantity,
			string(d.Status),
			d.DonationDate.UTC().Format(time.DateTime),
			d.CreatedAt.UTC().Format(time.DateTime),
		}
		if err := f.SetSheetRow(DonationSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
