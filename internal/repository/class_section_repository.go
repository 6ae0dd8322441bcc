package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vqdung71104/student-management-sub000/internal/models"
)

const classSectionColumns = `cs.id, cs.subject_id, s.name AS subject_name, cs.teacher_name, cs.room, cs.capacity,
cs.registered_count, s.credits, cs.study_days, cs.study_weeks, cs.start_time, cs.end_time, cs.created_at, cs.updated_at`

// ClassSectionRepository reads schedule-able sections from Postgres.
type ClassSectionRepository struct {
	db *sqlx.DB
}

// NewClassSectionRepository constructs the repository.
func NewClassSectionRepository(db *sqlx.DB) *ClassSectionRepository {
	return &ClassSectionRepository{db: db}
}

// ListBySubject returns every section offered for a subject.
func (r *ClassSectionRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.ClassSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sections cs
JOIN subjects s ON s.id = cs.subject_id
WHERE cs.subject_id = $1
ORDER BY cs.id ASC`, classSectionColumns)
	var sections []models.ClassSection
	if err := r.db.SelectContext(ctx, &sections, query, subjectID); err != nil {
		return nil, fmt.Errorf("list sections by subject: %w", err)
	}
	return sections, nil
}

// FindByIDs returns the sections matching the given identifiers.
func (r *ClassSectionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.ClassSection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM class_sections cs
JOIN subjects s ON s.id = cs.subject_id
WHERE cs.id IN (?)
ORDER BY cs.id ASC`, classSectionColumns)
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, fmt.Errorf("expand section id list: %w", err)
	}
	query = r.db.Rebind(query)
	var sections []models.ClassSection
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("find sections by ids: %w", err)
	}
	return sections, nil
}

// ListRegisteredByStudent returns the sections a student already registered for.
func (r *ClassSectionRepository) ListRegisteredByStudent(ctx context.Context, studentID string) ([]models.ClassSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sections cs
JOIN subjects s ON s.id = cs.subject_id
JOIN registrations reg ON reg.section_id = cs.id
WHERE reg.student_id = $1
ORDER BY cs.id ASC`, classSectionColumns)
	var sections []models.ClassSection
	if err := r.db.SelectContext(ctx, &sections, query, studentID); err != nil {
		return nil, fmt.Errorf("list registered sections: %w", err)
	}
	return sections, nil
}
