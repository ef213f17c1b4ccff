// Package export renders role-scoped case views as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"casedesk/internal/model"
	"casedesk/internal/policy"
)

// SheetName is the single worksheet of an export.
const SheetName = "Cases"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TimeLayout formats date cells.
const TimeLayout = "2006-01-02 15:04:05"

// Column maps one spreadsheet column to a case field.
type Column struct {
	Header string
	Field  policy.Field
	Width  float64
}

// Layouts holds the column order exported to each role. What a cell may
// contain is still decided by the visibility policy.
var Layouts = map[model.Role][]Column{
	model.RoleAdmin: {
		{"Agent Name", policy.FieldAgentName, 20},
		{"Customer Name", policy.FieldCustomerName, 20},
		{"Phone", policy.FieldPhone, 15},
		{"Email", policy.FieldEmail, 25},
		{"Address", policy.FieldAddress, 25},
		{"Amount", policy.FieldAmount, 10},
		{"Services", policy.FieldServices, 15},
		{"Issue", policy.FieldIssue, 30},
		{"Device", policy.FieldDevice, 15},
		{"Model", policy.FieldModel, 15},
		{"ISP", policy.FieldISP, 15},
		{"Payment Mode", policy.FieldPaymentMode, 15},
		{"Card Number", policy.FieldCardNumber, 20},
		{"Agent Remark", policy.FieldRemark, 20},
		{"Tech Remark", policy.FieldTechRemark, 20},
		{"Issue Fixed", policy.FieldIssueFixed, 12},
		{"Status", policy.FieldStatus, 12},
		{"Fix Date", policy.FieldFixDate, 20},
		{"Created At", policy.FieldCreatedAt, 20},
	},
	model.RoleTech: {
		{"Agent Name", policy.FieldAgentName, 20},
		{"Customer Name", policy.FieldCustomerName, 20},
		{"Phone", policy.FieldPhone, 15},
		{"Email", policy.FieldEmail, 25},
		{"Address", policy.FieldAddress, 25},
		{"Issue", policy.FieldIssue, 30},
		{"Device", policy.FieldDevice, 15},
		{"Model", policy.FieldModel, 15},
		{"ISP", policy.FieldISP, 15},
		{"Tech Remark", policy.FieldTechRemark, 20},
		{"Issue Fixed", policy.FieldIssueFixed, 12},
		{"Status", policy.FieldStatus, 12},
		{"Fix Date", policy.FieldFixDate, 20},
	},
	model.RoleAgent: {
		{"Agent Name", policy.FieldAgentName, 20},
		{"Customer Name", policy.FieldCustomerName, 20},
		{"Phone", policy.FieldPhone, 15},
		{"Email", policy.FieldEmail, 25},
		{"Address", policy.FieldAddress, 25},
		{"Amount", policy.FieldAmount, 10},
		{"Services", policy.FieldServices, 15},
		{"Issue", policy.FieldIssue, 30},
		{"Payment Mode", policy.FieldPaymentMode, 15},
		{"Remark", policy.FieldRemark, 20},
		{"Status", policy.FieldStatus, 12},
		{"Created At", policy.FieldCreatedAt, 20},
	},
}

// Workbook renders views with the column layout of role.
func Workbook(role model.Role, views []policy.View) ([]byte, error) {
	columns, ok := Layouts[role]
	if !ok {
		return nil, fmt.Errorf("export: no layout for role %q", role)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, col.Header); err != nil {
			return nil, fmt.Errorf("export: header %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, col.Width); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	for r, view := range views {
		for i, col := range columns {
			value, ok := cellValue(view, col.Field)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("export: cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("export: set %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(view policy.View, field policy.Field) (any, bool) {
	raw, ok := view[field]
	if !ok || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case bool:
		if v {
			return "YES", true
		}
		return "NO", true
	case time.Time:
		if v.IsZero() {
			return nil, false
		}
		return v.Format(TimeLayout), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	default:
		return view.String(field), true
	}
}
