package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prime/backoffice/client"
	"github.com/prime/backoffice/export"
	"github.com/prime/backoffice/metrics"
)

func ptr[T any](v T) *T { return &v }

// readBack round-trips f through its xlsx encoding and returns the rows of sheet.
func readBack(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	opened, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { opened.Close() })

	rows, err := opened.GetRows(sheet)
	require.NoError(t, err)

	panes, err := opened.GetPanes(sheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze, "header row is frozen")
	assert.Equal(t, 1, panes.YSplit)

	return rows
}

func TestClientsWorkbook(t *testing.T) {
	asOf := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	clients := []client.ClientResponse{
		{
			ID: 1, Name: "Jean Bosco", InsuranceType: client.InsuranceHealth,
			PolicyNumber: ptr("POL-001"), PolicyEndDate: ptr("2026-11-10"),
			PolicyStatus:   ptr(metrics.PolicyActive),
			AgentFirstName: "Aline", AgentLastName: "Uwase",
		},
		{
			ID: 2, Name: "Marie Claire", InsuranceType: client.InsuranceAuto,
			PolicyEndDate: ptr("2026-10-01"), PolicyStatus: ptr(metrics.PolicyExpired),
		},
		{ID: 3, Name: "No Dates", InsuranceType: client.InsuranceLife},
	}

	f, err := export.ClientsWorkbook(clients, asOf)
	require.NoError(t, err)
	rows := readBack(t, f, export.SheetClients)

	require.Len(t, rows, 4)
	assert.Equal(t, "Days Remaining", rows[0][6])
	assert.Equal(t, "Note", rows[0][10])

	assert.Equal(t, []string{
		"1", "Jean Bosco", "HEALTH", "POL-001", "2026-11-10", "ACTIVE",
		"24", "No", "Yes", "Aline Uwase", "",
	}, padTo(rows[1], 11))

	assert.Equal(t, "-16", rows[2][6])
	assert.Equal(t, "Yes", rows[2][7])
	assert.Equal(t, "No", rows[2][8])

	// GIVEN a client without an end date
	// THEN its row is kept and the note explains why metrics are blank
	failing := padTo(rows[3], 11)
	assert.Equal(t, "", failing[6])
	assert.Contains(t, failing[10], "policyEndDate")
}

func TestAttendanceWorkbook(t *testing.T) {
	records := []client.AttendanceResponse{
		{
			ID: 10, AgentFirstName: "Aline", AgentLastName: "Uwase",
			CheckInTime: "2026-03-10T06:45:00", CheckOutTime: ptr("2026-03-10T15:45:00"),
			Status: metrics.AttendancePresent,
		},
		{
			ID: 11, AgentFirstName: "Eric", AgentLastName: "Mugisha",
			CheckInTime: "2026-03-10T06:20:00", Status: metrics.AttendancePresent,
		},
		{ID: 12, AgentFirstName: "Eric", AgentLastName: "Mugisha", Status: metrics.AttendanceAbsent},
	}

	f, err := export.AttendanceWorkbook(records, time.UTC)
	require.NoError(t, err)
	rows := readBack(t, f, export.SheetAttendance)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"10", "Aline Uwase", "2026-03-10T06:45:00", "2026-03-10T15:45:00", "PRESENT",
		"Yes", "15", "9", "No", "",
	}, padTo(rows[1], 10))

	open := padTo(rows[2], 10)
	assert.Equal(t, "No", open[5])
	assert.Equal(t, "0", open[6])
	assert.Equal(t, "", open[7], "no hours without a check-out")

	missing := padTo(rows[3], 10)
	assert.Equal(t, "ABSENT", missing[4])
	assert.Contains(t, missing[9], "checkInTime")
}

func TestPerformanceWorkbook(t *testing.T) {
	records := []client.PerformanceResponse{
		{
			ID: 20, AgentFirstName: "Aline", AgentLastName: "Uwase",
			PeriodStart: "2026-07-01", PeriodEnd: "2026-09-30",
			SalesTarget: 100, SalesAchieved: 120,
			ClientRetentionRate: ptr(90.0), CustomerSatisfactionScore: ptr(4.5),
			AttendanceScore: 95, QualityScore: 85,
		},
		{ID: 21, AgentFirstName: "Eric", AgentLastName: "Mugisha", SalesAchieved: 50},
	}

	f, err := export.PerformanceWorkbook(records)
	require.NoError(t, err)
	rows := readBack(t, f, export.SheetPerformance)

	require.Len(t, rows, 3)
	good := padTo(rows[1], 10)
	assert.Equal(t, "120", good[6])
	assert.Equal(t, "101.5", good[7])
	assert.Equal(t, "OUTSTANDING", good[8])

	bad := padTo(rows[2], 10)
	assert.Equal(t, "", bad[7])
	assert.Contains(t, bad[9], "division by zero")
}

func TestWorkbooks_EmptyInput(t *testing.T) {
	f, err := export.PerformanceWorkbook(nil)
	require.NoError(t, err)

	rows := readBack(t, f, export.SheetPerformance)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, "ID", rows[0][0])
}

// padTo extends a row read back from a sheet, which drops trailing blanks.
func padTo(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}
