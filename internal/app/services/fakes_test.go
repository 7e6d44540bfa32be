package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/repositories"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/email"
	"github.com/campusly/campusly/internal/pkg/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	testLogger = zerolog.Nop()
	fixedNow   = time.Date(2025, time.April, 15, 10, 30, 0, 0, time.UTC)
)

func fixedClock() time.Time { return fixedNow }

// fakeEmployees serves employees from memory
type fakeEmployees map[int64]*models.Employee

func (f fakeEmployees) GetByID(_ context.Context, id int64) (*models.Employee, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, apperrors.ErrEmployeeNotFound
}

func (f fakeEmployees) ListPayable(_ context.Context, campusID *int64) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f {
		if !e.Status.IsPayable() || (campusID != nil && e.CampusID != *campusID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeStudents map[int64]*models.Student

func (f fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

type fakeDepartments map[int64]*models.Department

func (f fakeDepartments) GetByID(_ context.Context, id int64) (*models.Department, error) {
	if d, ok := f[id]; ok {
		return d, nil
	}
	return nil, apperrors.ErrDepartmentNotFound
}

type fakePrograms map[int64]*models.Program

func (f fakePrograms) GetByID(_ context.Context, id int64) (*models.Program, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProgramNotFound
}

// fakeStructures keeps one active structure per employee
type fakeStructures struct {
	SalaryStructureStore
	active map[int64]*models.SalaryStructure
	nextID int64
}

func newFakeStructures() *fakeStructures {
	return &fakeStructures{active: make(map[int64]*models.SalaryStructure)}
}

func (f *fakeStructures) CreateActive(_ context.Context, s *models.SalaryStructure) error {
	f.nextID++
	s.ID = f.nextID
	if prev, ok := f.active[s.EmployeeID]; ok {
		prev.IsActive = false
	}
	f.active[s.EmployeeID] = s
	return nil
}

func (f *fakeStructures) GetActive(_ context.Context, employeeID int64) (*models.SalaryStructure, error) {
	if s, ok := f.active[employeeID]; ok {
		return s, nil
	}
	return nil, apperrors.ErrNoActiveSalaryStructure
}

// fakePayrolls enforces one payroll per employee and period
type fakePayrolls struct {
	PayrollStore
	byID   map[int64]*models.Payroll
	nextID int64
}

func newFakePayrolls() *fakePayrolls {
	return &fakePayrolls{byID: make(map[int64]*models.Payroll)}
}

func (f *fakePayrolls) Create(ctx context.Context, p *models.Payroll) error {
	if exists, _ := f.ExistsForPeriod(ctx, p.EmployeeID, p.Period); exists {
		return apperrors.ErrPayrollAlreadyProcessed
	}
	f.nextID++
	p.ID = f.nextID
	stored := *p
	f.byID[p.ID] = &stored
	return nil
}

func (f *fakePayrolls) GetByID(_ context.Context, id int64) (*models.Payroll, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.ErrPayrollNotFound
}

func (f *fakePayrolls) ExistsForPeriod(_ context.Context, employeeID int64, period string) (bool, error) {
	for _, p := range f.byID {
		if p.EmployeeID == employeeID && p.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePayrolls) UpdateWorkflow(_ context.Context, p *models.Payroll, from models.PayrollStatus) error {
	stored, ok := f.byID[p.ID]
	if !ok {
		return apperrors.ErrPayrollNotFound
	}
	if stored.Status != from {
		return apperrors.NewTransitionError("payroll status changed concurrently")
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayrolls) DeleteRejected(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

// fakeSummarizer returns a fixed attendance ratio
type fakeSummarizer struct {
	ratio string
}

func (f fakeSummarizer) Summarize(_ context.Context, employeeID int64, period string) (*models.AttendanceSummary, error) {
	ratio := "1"
	if f.ratio != "" {
		ratio = f.ratio
	}
	return &models.AttendanceSummary{
		EmployeeID:      employeeID,
		Period:          period,
		WorkingDays:     21,
		PaidDays:        decimal.RequireFromString("21"),
		AttendanceRatio: decimal.RequireFromString(ratio),
	}, nil
}

// fakeMailer records outgoing mail
type fakeMailer struct {
	mu        sync.Mutex
	decisions []email.AdmissionDecision
	payslips  []email.PayslipNotice
	err       error
}

func (m *fakeMailer) SendAdmissionDecision(msg email.AdmissionDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, msg)
	return m.err
}

func (m *fakeMailer) SendPayslip(msg email.PayslipNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payslips = append(m.payslips, msg)
	return m.err
}

// fakeApplications serves a fixed merit pool and records the applied outcome
type fakeApplications struct {
	ApplicationStore
	pool     []*models.AdmissionApplication
	admitted int
	applied  []models.MeritEntryUpdate
	applyErr error
	created  []*models.AdmissionApplication
}

func (f *fakeApplications) Create(_ context.Context, app *models.AdmissionApplication) error {
	app.ID = int64(len(f.created) + 1)
	f.created = append(f.created, app)
	return nil
}

func (f *fakeApplications) ListPool(_ context.Context, _ int64, _ string) ([]*models.AdmissionApplication, error) {
	return f.pool, nil
}

func (f *fakeApplications) CountAdmitted(_ context.Context, _ int64, _ string) (int, error) {
	return f.admitted, nil
}

func (f *fakeApplications) ApplyMeritList(_ context.Context, updates []models.MeritEntryUpdate) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = updates
	return nil
}

// fakeCertificates can be told to reject the first serials as duplicates
type fakeCertificates struct {
	CertificateStore
	collisions int
	bySerial   map[string]*models.Certificate
}

func (f *fakeCertificates) Create(_ context.Context, c *models.Certificate) error {
	if f.collisions > 0 {
		f.collisions--
		return repositories.ErrDuplicateSerial
	}
	if f.bySerial == nil {
		f.bySerial = make(map[string]*models.Certificate)
	}
	c.ID = int64(len(f.bySerial) + 1)
	f.bySerial[c.SerialNumber] = c
	return nil
}

func (f *fakeCertificates) GetBySerial(_ context.Context, serial string) (*models.Certificate, error) {
	if c, ok := f.bySerial[serial]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCertificateNotFound
}

// fakeBooks serves books from memory
type fakeBooks struct {
	BookStore
	byID map[int64]*models.Book
}

func (f *fakeBooks) GetByID(_ context.Context, id int64) (*models.Book, error) {
	if b, ok := f.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, apperrors.ErrBookNotFound
}

func (f *fakeBooks) Update(_ context.Context, b *models.Book) error {
	existing, ok := f.byID[b.ID]
	if !ok {
		return apperrors.ErrBookNotFound
	}
	cp := *b
	cp.AvailableCopies = b.TotalCopies - existing.IssuedCopies()
	f.byID[b.ID] = &cp
	return nil
}

// fakeIssues lends and returns copies against fakeBooks
type fakeIssues struct {
	BookIssueStore
	books *fakeBooks
	byID  map[int64]*models.BookIssue
}

func (f *fakeIssues) Issue(_ context.Context, issue *models.BookIssue, maxOpen int) error {
	open := 0
	for _, i := range f.byID {
		if i.StudentID == issue.StudentID && i.Status == models.BookIssued {
			open++
		}
	}
	if open >= maxOpen {
		return apperrors.ErrBorrowLimitReached
	}
	book := f.books.byID[issue.BookID]
	if book.AvailableCopies == 0 {
		return apperrors.ErrNoCopiesAvailable
	}
	book.AvailableCopies--
	issue.ID = int64(len(f.byID) + 1)
	issue.Status = models.BookIssued
	f.byID[issue.ID] = issue
	return nil
}

func (f *fakeIssues) Return(_ context.Context, issue *models.BookIssue) error {
	stored := f.byID[issue.ID]
	if stored.Status != models.BookIssued {
		return apperrors.ErrBookAlreadyReturned
	}
	f.books.byID[issue.BookID].AvailableCopies++
	issue.Status = models.BookReturned
	f.byID[issue.ID] = issue
	return nil
}

func (f *fakeIssues) GetByID(_ context.Context, id int64) (*models.BookIssue, error) {
	if i, ok := f.byID[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, apperrors.ErrBookIssueNotFound
}

// fakeTimetable returns preset conflicts
type fakeTimetable struct {
	TimetableStore
	conflicts []*models.TimetableEntry
	created   []*models.TimetableEntry
}

func (f *fakeTimetable) FindConflicts(_ context.Context, _ *models.TimetableEntry) ([]*models.TimetableEntry, error) {
	return f.conflicts, nil
}

func (f *fakeTimetable) Create(_ context.Context, t *models.TimetableEntry) error {
	t.ID = int64(len(f.created) + 1)
	f.created = append(f.created, t)
	return nil
}

// fakeNotices stores notices in memory
type fakeNotices struct {
	NoticeStore
	byID map[int64]*models.Notice
}

func (f *fakeNotices) Create(_ context.Context, n *models.Notice) error {
	if f.byID == nil {
		f.byID = make(map[int64]*models.Notice)
	}
	n.ID = int64(len(f.byID) + 1)
	f.byID[n.ID] = n
	return nil
}

func (f *fakeNotices) GetByID(_ context.Context, id int64) (*models.Notice, error) {
	if n, ok := f.byID[id]; ok {
		return n, nil
	}
	return nil, apperrors.ErrNoticeNotFound
}

// recordingPublisher captures live notifications
type recordingPublisher struct {
	sent []*websocket.Notification
}

func (p *recordingPublisher) Publish(n *websocket.Notification) {
	p.sent = append(p.sent, n)
}
