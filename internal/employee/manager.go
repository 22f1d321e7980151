package employee

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/empuraan01/fenmoai-hrletter/internal/band"
	apperrors "github.com/empuraan01/fenmoai-hrletter/internal/errors"
	"github.com/empuraan01/fenmoai-hrletter/internal/logger"
)

// Employee is one row of the employee roster.
type Employee struct {
	EmployeeID  string
	Name        string
	Department  string
	Location    string
	Band        band.Band
	BaseSalary  float64
	JoiningDate string
}

// Policies flags which policy areas apply to an employee. WFH starts at
// L2, flexible hours at L3.
type Policies struct {
	LeavePolicy   bool
	TravelPolicy  bool
	WFHPolicy     bool
	FlexibleHours bool
}

// Manager loads the employee roster from CSV and answers lookups.
type Manager struct {
	employees map[string]Employee
	logger    *zap.Logger
}

// NewManager reads the roster CSV. Expected headers: Employee Name,
// Department, Location, Band, Base Salary (INR), Joining Date.
func NewManager(csvPath string) (*Manager, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeDocumentNotFound, csvPath).WithCause(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeParseFailure,
			fmt.Sprintf("failed to read %s", csvPath)).WithCause(err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeParseFailure,
			fmt.Sprintf("%s has no header row", csvPath))
	}

	columns := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		columns[strings.TrimSpace(header)] = i
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	m := &Manager{
		employees: make(map[string]Employee, len(records)-1),
		logger:    logger.GetLogger(),
	}
	for _, row := range records[1:] {
		name := field(row, "Employee Name")
		if name == "" {
			continue
		}

		salary, _ := strconv.ParseFloat(strings.ReplaceAll(field(row, "Base Salary (INR)"), ",", ""), 64)
		b, _ := band.Parse(field(row, "Band"))

		emp := Employee{
			EmployeeID:  fmt.Sprintf("EMP_%03d", len(m.employees)+1),
			Name:        name,
			Department:  field(row, "Department"),
			Location:    field(row, "Location"),
			Band:        b,
			BaseSalary:  salary,
			JoiningDate: field(row, "Joining Date"),
		}
		m.employees[strings.ToLower(name)] = emp
	}

	m.logger.Info("loaded employee roster",
		zap.String("path", csvPath), zap.Int("count", len(m.employees)))
	return m, nil
}

// Find looks an employee up by name, case-insensitively.
func (m *Manager) Find(name string) (Employee, error) {
	emp, ok := m.employees[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Employee{}, apperrors.NewNotFoundError(apperrors.ErrCodeEmployeeNotFound,
			fmt.Sprintf("employee %q", name))
	}
	return emp, nil
}

// List returns all employee names, sorted.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.employees))
	for _, emp := range m.employees {
		names = append(names, emp.Name)
	}
	sort.Strings(names)
	return names
}

// ByBand returns every employee in the given band.
func (m *Manager) ByBand(b band.Band) []Employee {
	var matched []Employee
	for _, emp := range m.employees {
		if emp.Band == b {
			matched = append(matched, emp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched
}

// ApplicablePolicies flags the policy areas that apply to the employee's
// band.
func (m *Manager) ApplicablePolicies(emp Employee) Policies {
	return Policies{
		LeavePolicy:   true,
		TravelPolicy:  true,
		WFHPolicy:     emp.Band.Level() >= 2,
		FlexibleHours: emp.Band.Level() >= 3,
	}
}

// Count returns the roster size.
func (m *Manager) Count() int {
	return len(m.employees)
}
