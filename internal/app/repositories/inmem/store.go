// Package inmem is a mutex-guarded, map-backed implementation of the student
// and class stores. It backs the test suites and the "memory" database driver.
package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
)

type tables struct {
	students   map[int64]*models.Student
	classes    map[int64]*models.Class
	records    []*models.PromotionRecord
	references map[int64][]string // student id -> referencing history tables
	studentPK  int64
	classPK    int64
	sectionPK  int64
	recordPK   int64
}

func (t *tables) clone() *tables {
	c := &tables{
		students:   make(map[int64]*models.Student, len(t.students)),
		classes:    make(map[int64]*models.Class, len(t.classes)),
		records:    append([]*models.PromotionRecord(nil), t.records...),
		references: make(map[int64][]string, len(t.references)),
		studentPK:  t.studentPK,
		classPK:    t.classPK,
		sectionPK:  t.sectionPK,
		recordPK:   t.recordPK,
	}
	for id, s := range t.students {
		c.students[id] = copyStudent(s)
	}
	for id, cl := range t.classes {
		c.classes[id] = copyClass(cl)
	}
	for id, refs := range t.references {
		c.references[id] = append([]string(nil), refs...)
	}
	return c
}

// Store holds students, classes and promotion records in memory
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	db   *tables
	now  func() time.Time
}

var (
	_ repositories.StudentStore = (*Store)(nil)
	_ repositories.ClassStore   = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		db: &tables{
			students:   make(map[int64]*models.Student),
			classes:    make(map[int64]*models.Class),
			references: make(map[int64][]string),
		},
		now: time.Now,
	}
}

func copyStudent(s *models.Student) *models.Student {
	c := *s
	if s.SectionID != nil {
		c.SectionID = models.Int64Ptr(*s.SectionID)
	}
	if s.RollNumber != nil {
		roll := *s.RollNumber
		c.RollNumber = &roll
	}
	return &c
}

func copyClass(cl *models.Class) *models.Class {
	c := *cl
	c.Sections = append([]models.Section(nil), cl.Sections...)
	return &c
}

func inScope(s *models.Student, classID int64, sectionID *int64) bool {
	if s.ClassID != classID {
		return false
	}
	return sectionID == nil || (s.SectionID != nil && *s.SectionID == *sectionID)
}

// rollTaken reports whether another Active student holds roll in the student's placement.
func (t *tables) rollTaken(except int64, classID int64, sectionID *int64, roll *int) bool {
	if roll == nil {
		return false
	}
	for _, other := range t.students {
		if other.ID == except || !other.IsActive() || other.RollNumber == nil {
			continue
		}
		if other.ClassID == classID && models.SameSection(other.SectionID, sectionID) && *other.RollNumber == *roll {
			return true
		}
	}
	return false
}

func (s *Store) create(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.db.students {
		if other.AdmissionNumber == student.AdmissionNumber {
			return apperrors.ErrAdmissionNumberTaken
		}
	}
	class, ok := s.db.classes[student.ClassID]
	if !ok {
		return apperrors.ErrClassNotFound
	}
	if student.SectionID != nil && !class.HasSection(*student.SectionID) {
		return apperrors.ErrSectionNotFound
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if student.IsActive() && s.db.rollTaken(0, student.ClassID, student.SectionID, student.RollNumber) {
		return apperrors.ErrRollNumberTaken
	}

	s.db.studentPK++
	now := s.now()
	student.ID = s.db.studentPK
	student.CreatedAt = now
	student.UpdatedAt = now
	student.Name = helpers.JoinName(student.FirstName, student.MiddleName, student.LastName)
	s.db.students[student.ID] = copyStudent(student)
	return nil
}

// GetByID returns a copy of the student regardless of status
func (s *Store) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if student, ok := s.db.students[id]; ok {
		return copyStudent(student), nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *Store) activeInScope(classID int64, sectionID *int64) []*models.Student {
	list := make([]*models.Student, 0)
	for _, student := range s.db.students {
		if student.IsActive() && inScope(student, classID, sectionID) {
			list = append(list, copyStudent(student))
		}
	}
	return list
}

// ListActiveByPlacement returns the Active roster ordered by roll number (nulls last) then id
func (s *Store) ListActiveByPlacement(_ context.Context, classID int64, sectionID *int64) ([]*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.activeInScope(classID, sectionID)
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.RollNumber != nil && b.RollNumber != nil && *a.RollNumber != *b.RollNumber:
			return *a.RollNumber < *b.RollNumber
		case (a.RollNumber == nil) != (b.RollNumber == nil):
			return a.RollNumber != nil
		}
		return a.ID < b.ID
	})
	return list, nil
}

// CountActiveByPlacement counts Active students of a class or section
func (s *Store) CountActiveByPlacement(_ context.Context, classID int64, sectionID *int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.activeInScope(classID, sectionID))), nil
}

func matchesSearch(student *models.Student, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(student.Name), needle) ||
		strings.Contains(strings.ToLower(student.AdmissionNumber), needle) ||
		strings.Contains(strings.ToLower(student.AttendanceID), needle)
}

// List returns one page of students matching the filter and the total match count
func (s *Store) List(_ context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := filter.Status
	if status == "" {
		status = models.StudentStatusActive
	}
	search := strings.TrimSpace(filter.Search)

	matched := make([]*models.Student, 0)
	for _, student := range s.db.students {
		if student.Status != status {
			continue
		}
		if filter.ClassID != nil && student.ClassID != *filter.ClassID {
			continue
		}
		if filter.SectionID != nil && (student.SectionID == nil || *student.SectionID != *filter.SectionID) {
			continue
		}
		if search != "" && !matchesSearch(student, search) {
			continue
		}
		matched = append(matched, copyStudent(student))
	}

	if status == models.StudentStatusDeleted {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if a.DeletedAt != nil && b.DeletedAt != nil && !a.DeletedAt.Equal(*b.DeletedAt) {
				return a.DeletedAt.After(*b.DeletedAt)
			}
			return a.ID < b.ID
		})
	} else {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if a.ClassID != b.ClassID {
				return a.ClassID < b.ClassID
			}
			if !models.SameSection(a.SectionID, b.SectionID) {
				if a.SectionID == nil || b.SectionID == nil {
					return a.SectionID == nil
				}
				return *a.SectionID < *b.SectionID
			}
			if (a.RollNumber == nil) != (b.RollNumber == nil) {
				return a.RollNumber != nil
			}
			if a.RollNumber != nil && *a.RollNumber != *b.RollNumber {
				return *a.RollNumber < *b.RollNumber
			}
			return a.ID < b.ID
		})
	}

	_, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Limit)
	start, end := helpers.CalculateSliceIndices(filter.Page, limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (s *Store) updatePlacement(_ context.Context, id int64, placement models.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.db.students[id]
	if !ok || !student.IsActive() {
		return apperrors.ErrStudentNotFound
	}
	student.ClassID = placement.ClassID
	student.SectionID = nil
	if placement.SectionID != nil {
		student.SectionID = models.Int64Ptr(*placement.SectionID)
	}
	student.AcademicYear = placement.AcademicYear
	student.RollNumber = nil
	student.UpdatedAt = s.now()
	return nil
}

func (s *Store) appendPromotionRecord(_ context.Context, record *models.PromotionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.db.students[record.StudentID]; !ok {
		return apperrors.NewStorageError("promotion_record.append",
			fmt.Errorf("student %d does not exist", record.StudentID))
	}
	s.db.recordPK++
	record.ID = s.db.recordPK
	if record.PromotedAt.IsZero() {
		record.PromotedAt = s.now()
	}
	stored := *record
	s.db.records = append(s.db.records, &stored)
	return nil
}

// ListPromotionRecords returns a student's history in append order
func (s *Store) ListPromotionRecords(_ context.Context, studentID int64) ([]*models.PromotionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*models.PromotionRecord, 0)
	for _, rec := range s.db.records {
		if rec.StudentID == studentID {
			c := *rec
			records = append(records, &c)
		}
	}
	return records, nil
}

func (s *Store) assignRollNumbers(_ context.Context, classID int64, sectionID *int64, assignments []models.RollAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]int64, len(assignments))
	for _, a := range assignments {
		student, ok := s.db.students[a.StudentID]
		if !ok || !student.IsActive() || !inScope(student, classID, sectionID) {
			return apperrors.NewConflictError(fmt.Sprintf("student %d is no longer on the roster", a.StudentID))
		}
		if other, dup := seen[a.RollNumber]; dup && models.SameSection(s.db.students[other].SectionID, student.SectionID) {
			return apperrors.ErrRollNumberTaken
		}
		seen[a.RollNumber] = a.StudentID
	}

	now := s.now()
	for _, student := range s.db.students {
		if student.IsActive() && inScope(student, classID, sectionID) {
			student.RollNumber = nil
		}
	}
	for _, a := range assignments {
		roll := a.RollNumber
		student := s.db.students[a.StudentID]
		student.RollNumber = &roll
		student.UpdatedAt = now
	}
	return nil
}

func (s *Store) softDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.db.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if !student.IsActive() {
		return apperrors.ErrStudentAlreadyDeleted
	}
	now := s.now()
	student.Status = models.StudentStatusDeleted
	student.DeletedAt = &now
	return nil
}

func (s *Store) restore(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.db.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if student.IsActive() {
		return apperrors.ErrStudentNotDeleted
	}
	if s.db.rollTaken(id, student.ClassID, student.SectionID, student.RollNumber) {
		return apperrors.ErrRollNumberTaken
	}
	student.Status = models.StudentStatusActive
	student.DeletedAt = nil
	return nil
}

func (s *Store) permanentlyDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.db.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if student.IsActive() {
		return apperrors.ErrStudentStillActive
	}
	for _, rec := range s.db.records {
		if rec.StudentID == id {
			return &apperrors.ReferentialIntegrityError{
				Table:      "promotion_records",
				Constraint: "promotion_records_student_id_fkey",
				Detail:     fmt.Sprintf("Key (id)=(%d) is still referenced from table \"promotion_records\".", id),
			}
		}
	}
	if refs := s.db.references[id]; len(refs) > 0 {
		return &apperrors.ReferentialIntegrityError{
			Table:      refs[0],
			Constraint: refs[0] + "_student_id_fkey",
			Detail:     fmt.Sprintf("Key (id)=(%d) is still referenced from table %q.", id, refs[0]),
		}
	}
	delete(s.db.students, id)
	return nil
}

func (s *Store) addReference(studentID int64, table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.references[studentID] = append(s.db.references[studentID], table)
}

// WithinTx serialises transactions and restores a snapshot when fn fails.
// Writes outside a transaction wait for it to finish, so a rollback only
// discards the transaction's own changes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, store repositories.StudentStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.db.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &txStore{Store: s}); err != nil {
		s.mu.Lock()
		s.db = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Create inserts a student
func (s *Store) Create(ctx context.Context, student *models.Student) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.create(ctx, student)
}

// UpdatePlacement moves an Active student and clears its roll number
func (s *Store) UpdatePlacement(ctx context.Context, id int64, placement models.Placement) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updatePlacement(ctx, id, placement)
}

// AppendPromotionRecord stores an audit row
func (s *Store) AppendPromotionRecord(ctx context.Context, record *models.PromotionRecord) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.appendPromotionRecord(ctx, record)
}

// AssignRollNumbers replaces the scope's roll numbers. Nothing changes on error.
func (s *Store) AssignRollNumbers(ctx context.Context, classID int64, sectionID *int64, assignments []models.RollAssignment) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.assignRollNumbers(ctx, classID, sectionID, assignments)
}

// SoftDelete moves an Active student to the bin
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.softDelete(ctx, id)
}

// Restore brings a binned student back to the Active roster
func (s *Store) Restore(ctx context.Context, id int64) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.restore(ctx, id)
}

// PermanentlyDelete removes a binned student unless history still references it
func (s *Store) PermanentlyDelete(ctx context.Context, id int64) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.permanentlyDelete(ctx, id)
}

// AddReference records that a history table (attendance, marks, fees...) points at a student.
func (s *Store) AddReference(studentID int64, table string) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.addReference(studentID, table)
}

// CreateClass inserts a class
func (s *Store) CreateClass(ctx context.Context, class *models.Class) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createClass(ctx, class)
}

// CreateSection adds a section to an existing class
func (s *Store) CreateSection(ctx context.Context, section *models.Section) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createSection(ctx, section)
}

// txStore is the Store seen from inside WithinTx. It already holds txMu, so its
// writes skip it; nested transactions join the outer one.
type txStore struct {
	*Store
}

func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, store repositories.StudentStore) error) error {
	return fn(ctx, t)
}

func (t *txStore) Create(ctx context.Context, student *models.Student) error {
	return t.create(ctx, student)
}

func (t *txStore) UpdatePlacement(ctx context.Context, id int64, placement models.Placement) error {
	return t.updatePlacement(ctx, id, placement)
}

func (t *txStore) AppendPromotionRecord(ctx context.Context, record *models.PromotionRecord) error {
	return t.appendPromotionRecord(ctx, record)
}

func (t *txStore) AssignRollNumbers(ctx context.Context, classID int64, sectionID *int64, assignments []models.RollAssignment) error {
	return t.assignRollNumbers(ctx, classID, sectionID, assignments)
}

func (t *txStore) SoftDelete(ctx context.Context, id int64) error {
	return t.softDelete(ctx, id)
}

func (t *txStore) Restore(ctx context.Context, id int64) error {
	return t.restore(ctx, id)
}

func (t *txStore) PermanentlyDelete(ctx context.Context, id int64) error {
	return t.permanentlyDelete(ctx, id)
}

func (t *txStore) AddReference(studentID int64, table string) {
	t.addReference(studentID, table)
}

func (t *txStore) CreateClass(ctx context.Context, class *models.Class) error {
	return t.createClass(ctx, class)
}

func (t *txStore) CreateSection(ctx context.Context, section *models.Section) error {
	return t.createSection(ctx, section)
}

// GetClass returns a class with its sections
func (s *Store) GetClass(_ context.Context, id int64) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if class, ok := s.db.classes[id]; ok {
		return copyClass(class), nil
	}
	return nil, apperrors.ErrClassNotFound
}

// ListClasses returns every class ordered by id
func (s *Store) ListClasses(_ context.Context) ([]*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	classes := make([]*models.Class, 0, len(s.db.classes))
	for _, class := range s.db.classes {
		classes = append(classes, copyClass(class))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (s *Store) createClass(_ context.Context, class *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.db.classes {
		if other.Name == class.Name {
			return apperrors.ErrClassExists
		}
	}
	s.db.classPK++
	class.ID = s.db.classPK
	class.CreatedAt = s.now()
	if class.Sections == nil {
		class.Sections = make([]models.Section, 0)
	}
	s.db.classes[class.ID] = copyClass(class)
	return nil
}

func (s *Store) createSection(_ context.Context, section *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	class, ok := s.db.classes[section.ClassID]
	if !ok {
		return apperrors.ErrClassNotFound
	}
	for _, other := range class.Sections {
		if other.Name == section.Name {
			return apperrors.ErrSectionExists
		}
	}
	s.db.sectionPK++
	section.ID = s.db.sectionPK
	class.Sections = append(class.Sections, *section)
	sort.Slice(class.Sections, func(i, j int) bool { return class.Sections[i].Name < class.Sections[j].Name })
	return nil
}
