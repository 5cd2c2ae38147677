package services

import (
	"context"
	"sort"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/helpers"
)

// ClassService defines the interface for class lookups
type ClassService interface {
	ListClasses(ctx context.Context) ([]*models.Class, error)
	GetClass(ctx context.Context, id int64) (*models.Class, error)
}

// classServiceImpl implements ClassService
type classServiceImpl struct {
	classes repositories.ClassStore
}

// NewClassService creates a new ClassService
func NewClassService(classes repositories.ClassStore) ClassService {
	return &classServiceImpl{classes: classes}
}

// ListClasses returns classes in numeric-aware name order ("Class 2" before "Class 10").
func (s *classServiceImpl) ListClasses(ctx context.Context) ([]*models.Class, error) {
	classes, err := s.classes.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return helpers.LessClassName(classes[i].Name, classes[j].Name)
	})
	for _, c := range classes {
		sortSections(c)
	}
	return classes, nil
}

func (s *classServiceImpl) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.classes.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	sortSections(class)
	return class, nil
}

func sortSections(c *models.Class) {
	sort.SliceStable(c.Sections, func(i, j int) bool {
		return helpers.CompareNamesFold(c.Sections[i].Name, c.Sections[j].Name) < 0
	})
}
