package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/campusly/campusly/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var timetableColumns = []string{
	"t.id", "t.campus_id", "t.department_id", "t.program_id", "t.session", "t.section", "t.course_code",
	"t.course_title", "t.teacher_id", "t.room", "t.day_of_week", "t.start_time", "t.end_time",
	"t.created_at", "t.updated_at", "e.full_name",
}

// TimetableRepository handles weekly timetable slots
type TimetableRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTimetableRepository creates a new timetable repository
func NewTimetableRepository(db *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{db: db, sb: statementBuilder()}
}

func (r *TimetableRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(timetableColumns...).From("timetable_entries t").Join("employees e ON e.id = t.teacher_id")
}

func scanTimetableEntry(row pgx.Row) (*models.TimetableEntry, error) {
	var t models.TimetableEntry
	err := row.Scan(&t.ID, &t.CampusID, &t.DepartmentID, &t.ProgramID, &t.Session, &t.Section, &t.CourseCode,
		&t.CourseTitle, &t.TeacherID, &t.Room, &t.DayOfWeek, &t.StartTime, &t.EndTime,
		&t.CreatedAt, &t.UpdatedAt, &t.TeacherName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTimetableEntries(rows pgx.Rows) ([]*models.TimetableEntry, error) {
	defer rows.Close()
	entries := make([]*models.TimetableEntry, 0)
	for rows.Next() {
		t, err := scanTimetableEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning timetable entry: %w", err)
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func mapTimetableWriteError(err error) error {
	switch {
	case dberrors.IsForeignKeyViolation(err, "timetable_entries_teacher_id_fkey"):
		return apperrors.ErrEmployeeNotFound
	case dberrors.IsForeignKeyViolation(err, "timetable_entries_department_id_fkey"):
		return apperrors.ErrDepartmentNotFound
	case dberrors.IsForeignKeyViolation(err, "timetable_entries_program_id_fkey"):
		return apperrors.ErrProgramNotFound
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCampusNotFound
	}
	return fmt.Errorf("error saving timetable entry: %w", err)
}

// Create inserts a timetable entry
func (r *TimetableRepository) Create(ctx context.Context, t *models.TimetableEntry) error {
	sql, args, err := r.sb.Insert("timetable_entries").
		Columns("campus_id", "department_id", "program_id", "session", "section", "course_code",
			"course_title", "teacher_id", "room", "day_of_week", "start_time", "end_time").
		Values(t.CampusID, t.DepartmentID, t.ProgramID, t.Session, t.Section, t.CourseCode,
			t.CourseTitle, t.TeacherID, t.Room, t.DayOfWeek, t.StartTime, t.EndTime).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create timetable query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return mapTimetableWriteError(err)
	}
	return nil
}

// GetByID retrieves a timetable entry by ID
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*models.TimetableEntry, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get timetable query: %w", err)
	}

	t, err := scanTimetableEntry(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTimetableEntryNotFound
		}
		return nil, fmt.Errorf("error retrieving timetable entry: %w", err)
	}
	return t, nil
}

// List returns a page of timetable entries in weekly order
func (r *TimetableRepository) List(ctx context.Context, filter dto.TimetableFilter, offset, limit uint64) ([]*models.TimetableEntry, int64, error) {
	conds := squirrel.And{}
	if filter.CampusID != nil {
		conds = append(conds, squirrel.Eq{"t.campus_id": *filter.CampusID})
	}
	if filter.DepartmentID != nil {
		conds = append(conds, squirrel.Eq{"t.department_id": *filter.DepartmentID})
	}
	if filter.ProgramID != nil {
		conds = append(conds, squirrel.Eq{"t.program_id": *filter.ProgramID})
	}
	if filter.Session != nil {
		conds = append(conds, squirrel.Eq{"t.session": *filter.Session})
	}
	if filter.Section != nil {
		conds = append(conds, squirrel.Eq{"t.section": *filter.Section})
	}
	if filter.TeacherID != nil {
		conds = append(conds, squirrel.Eq{"t.teacher_id": *filter.TeacherID})
	}
	if filter.Room != nil {
		conds = append(conds, squirrel.Eq{"t.room": *filter.Room})
	}
	if filter.DayOfWeek != nil {
		conds = append(conds, squirrel.Eq{"t.day_of_week": *filter.DayOfWeek})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("timetable_entries t").Where(conds))
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := r.selectQuery().Where(conds).
		OrderBy("t.day_of_week", "t.start_time", "t.room").Offset(offset).Limit(limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list timetable query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing timetable: %w", err)
	}
	entries, err := collectTimetableEntries(rows)
	return entries, total, err
}

// FindConflicts returns entries of the same session and day whose time range overlaps t
// and that share its room on the same campus or its teacher. t itself is excluded.
func (r *TimetableRepository) FindConflicts(ctx context.Context, t *models.TimetableEntry) ([]*models.TimetableEntry, error) {
	sql, args, err := r.selectQuery().
		Where(squirrel.Eq{"t.session": t.Session, "t.day_of_week": t.DayOfWeek}).
		Where(squirrel.NotEq{"t.id": t.ID}).
		Where(squirrel.Lt{"t.start_time": t.EndTime}).
		Where(squirrel.Gt{"t.end_time": t.StartTime}).
		Where(squirrel.Or{
			squirrel.Eq{"t.campus_id": t.CampusID, "t.room": t.Room},
			squirrel.Eq{"t.teacher_id": t.TeacherID},
		}).
		OrderBy("t.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build timetable conflict query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error checking timetable conflicts: %w", err)
	}
	return collectTimetableEntries(rows)
}

// Update rewrites a timetable entry
func (r *TimetableRepository) Update(ctx context.Context, t *models.TimetableEntry) error {
	sql, args, err := r.sb.Update("timetable_entries").
		Set("campus_id", t.CampusID).
		Set("department_id", t.DepartmentID).
		Set("program_id", t.ProgramID).
		Set("session", t.Session).
		Set("section", t.Section).
		Set("course_code", t.CourseCode).
		Set("course_title", t.CourseTitle).
		Set("teacher_id", t.TeacherID).
		Set("room", t.Room).
		Set("day_of_week", t.DayOfWeek).
		Set("start_time", t.StartTime).
		Set("end_time", t.EndTime).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": t.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update timetable query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTimetableEntryNotFound
		}
		return mapTimetableWriteError(err)
	}
	return nil
}

// Delete removes a timetable entry
func (r *TimetableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting timetable entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTimetableEntryNotFound
	}
	return nil
}
