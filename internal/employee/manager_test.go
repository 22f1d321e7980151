package employee

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
)

const rosterCSV = `Employee Name,Department,Location,Band,Base Salary (INR),Joining Date
Priya Sharma,Engineering,Bengaluru,L3,2400000,2024-03-01
Arjun Mehta,Sales,Mumbai,L1,800000,2024-06-15
Kavya Nair,Engineering,Bengaluru,L5,6500000,2023-11-01
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Employee_List.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewManagerLoadsRoster(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count())
}

func TestNewManagerMissingFile(t *testing.T) {
	_, err := NewManager("/nonexistent/roster.csv")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDocumentNotFound))
}

func TestFindCaseInsensitive(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)

	emp, err := m.Find("priya sharma")
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", emp.Name)
	assert.Equal(t, band.L3, emp.Band)
	assert.Equal(t, 2400000.0, emp.BaseSalary)
	assert.Equal(t, "EMP_001", emp.EmployeeID)

	emp, err = m.Find("  KAVYA NAIR ")
	require.NoError(t, err)
	assert.Equal(t, band.L5, emp.Band)
}

func TestFindUnknownEmployee(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)

	_, err = m.Find("Nobody Here")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmployeeNotFound))
}

func TestListSorted(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Arjun Mehta", "Kavya Nair", "Priya Sharma"}, m.List())
}

func TestByBand(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)

	l3 := m.ByBand(band.L3)
	require.Len(t, l3, 1)
	assert.Equal(t, "Priya Sharma", l3[0].Name)

	assert.Empty(t, m.ByBand(band.L2))
}

func TestApplicablePolicies(t *testing.T) {
	m, err := NewManager(writeRoster(t, rosterCSV))
	require.NoError(t, err)

	junior, _ := m.Find("Arjun Mehta")
	p := m.ApplicablePolicies(junior)
	assert.True(t, p.LeavePolicy)
	assert.True(t, p.TravelPolicy)
	assert.False(t, p.WFHPolicy)
	assert.False(t, p.FlexibleHours)

	senior, _ := m.Find("Priya Sharma")
	p = m.ApplicablePolicies(senior)
	assert.True(t, p.WFHPolicy)
	assert.True(t, p.FlexibleHours)
}
