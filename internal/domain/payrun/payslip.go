package payrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// OpenPayslip generates (or regenerates) the payslip and returns its plain
// PDF bytes, decrypting the at-rest copy when encryption is configured.
func (s *Service) OpenPayslip(ctx context.Context, runID, employeeID string) (string, []byte, error) {
	path, err := s.GeneratePayslipPDF(ctx, runID, employeeID)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	name := filepath.Base(path)
	if strings.HasSuffix(path, ".enc") {
		if data, err = s.crypto.Decrypt(data); err != nil {
			return "", nil, err
		}
		name = strings.TrimSuffix(name, ".enc")
	}
	return name, data, nil
}

// GeneratePayslipPDF renders one employee's share of a paid run to a PDF
// file and returns its path. When an encryption key is configured the file
// is stored encrypted with an .enc suffix.
func (s *Service) GeneratePayslipPDF(ctx context.Context, runID, employeeID string) (string, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if run.Status != RunStatusPaid {
		return "", ErrRunNotPaid
	}
	period, err := s.store.GetPeriod(ctx, run.PayPeriodID)
	if err != nil {
		return "", err
	}
	employee, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}

	items, err := s.store.ListItems(ctx, runID)
	if err != nil {
		return "", err
	}
	var own []PayRunItem
	for _, item := range items {
		if item.EmployeeID == employeeID {
			own = append(own, item)
		}
	}
	if len(own) == 0 {
		return "", ErrItemNotFound
	}
	summary := Summarize(run.Status, own)

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.payslipDir, runID+"-"+employeeID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", employee.FirstName, employee.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Pay run: %s", run.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	if run.PaidDate != nil {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Paid on: %s", run.PaidDate.Format("2006-01-02")))
	}
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Line items")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range own {
		label := item.Description
		if label == "" {
			label = item.CompensationType
		}
		pdf.Cell(120, 7, label)
		pdf.CellFormat(40, 7, item.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Total")
	pdf.CellFormat(40, 8, summary.Total.StringFixed(2), "", 0, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}
