package payrun

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cryptoutil "payrun/internal/platform/crypto"
)

func paidRunFixture(t *testing.T, opts ...Option) (*fixture, PayRun) {
	t.Helper()
	f := newFixture(opts...)
	ctx := context.Background()
	loc := strPtr("loc1")
	f.addEmployee("e1", loc)
	_, err := f.svc.AddCompensation(ctx, "e1", dec("4200.00"), date(2025, time.January, 1))
	require.NoError(t, err)
	period := f.mustPeriod(t, date(2025, time.May, 1), date(2025, time.May, 31))
	run := f.mustRun(t, period.ID, loc, false)
	f.approve(t, run.ID)
	paid, err := f.svc.ProcessPayments(ctx, run.ID, []string{"e1"})
	require.NoError(t, err)
	return f, paid
}

func TestGeneratePayslipPDF(t *testing.T) {
	dir := t.TempDir()
	f, run := paidRunFixture(t, WithPayslipDir(dir))
	ctx := context.Background()

	path, err := f.svc.GeneratePayslipPDF(ctx, run.ID, "e1")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestGeneratePayslipPDFRequiresPaidRun(t *testing.T) {
	f := newFixture(WithPayslipDir(t.TempDir()))
	ctx := context.Background()
	f.addEmployee("e1", nil)
	period := f.mustPeriod(t, date(2025, time.May, 1), date(2025, time.May, 31))
	run := f.mustRun(t, period.ID, nil, false)

	_, err := f.svc.GeneratePayslipPDF(ctx, run.ID, "e1")
	require.ErrorIs(t, err, ErrRunNotPaid)
}

func TestGeneratePayslipPDFUnknownEmployeeItems(t *testing.T) {
	f, run := paidRunFixture(t, WithPayslipDir(t.TempDir()))
	f.addEmployee("e2", nil)

	_, err := f.svc.GeneratePayslipPDF(context.Background(), run.ID, "e2")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestOpenPayslipDecryptsEncryptedFile(t *testing.T) {
	crypto, err := cryptoutil.New(strings.Repeat("k", 32))
	require.NoError(t, err)
	require.True(t, crypto.Configured())

	dir := t.TempDir()
	f, run := paidRunFixture(t, WithPayslipDir(dir), WithCrypto(crypto))
	ctx := context.Background()

	path, err := f.svc.GeneratePayslipPDF(ctx, run.ID, "e1")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, ".pdf.enc"))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(string(stored), "%PDF"))

	name, data, err := f.svc.OpenPayslip(ctx, run.ID, "e1")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".pdf"))
	require.True(t, strings.HasPrefix(string(data), "%PDF"))
}
