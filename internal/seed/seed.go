package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/schoolhub/internal/app/models"
	appRepos "github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
)

// DefaultClass describes a class created on first start
type DefaultClass struct {
	Name     string
	Sections []string
}

// DefaultClasses returns the class ladder a new school starts with.
// Pre-primary classes have no sections; numbered classes have A and B.
func DefaultClasses() []DefaultClass {
	classes := []DefaultClass{{Name: "Nursery"}, {Name: "LKG"}, {Name: "UKG"}}
	for i := 1; i <= 12; i++ {
		classes = append(classes, DefaultClass{
			Name:     fmt.Sprintf("Class %d", i),
			Sections: []string{"A", "B"},
		})
	}
	return classes
}

// CreateDefaultData creates the default classes and sections if they don't exist.
// It keeps going after a failure and returns every error it met.
func CreateDefaultData(ctx context.Context, classRepo appRepos.ClassStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Classes/Sections)...")

	existing, err := classRepo.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("listing classes: %w", err)
	}
	byName := make(map[string]*appModels.Class, len(existing))
	for _, c := range existing {
		byName[c.Name] = c
	}

	var finalErr error // To collect potential errors without stopping the process
	created := 0

	for _, def := range DefaultClasses() {
		class, ok := byName[def.Name]
		if !ok {
			class = &appModels.Class{Name: def.Name}
			if err := classRepo.CreateClass(ctx, class); err != nil {
				if !errors.Is(err, apperrors.ErrClassExists) {
					lgr.Error().Err(err).Str("class", def.Name).Msg("Error creating class")
					finalErr = errors.Join(finalErr, err)
				}
				continue
			}
			created++
		}

		for _, name := range def.Sections {
			if class.HasSectionNamed(name) {
				continue
			}
			err := classRepo.CreateSection(ctx, &appModels.Section{ClassID: class.ID, Name: name})
			if err != nil && !errors.Is(err, apperrors.ErrSectionExists) {
				lgr.Error().Err(err).Str("class", def.Name).Str("section", name).Msg("Error creating section")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	lgr.Info().Int("created", created).Msg("Default data check/creation finished.")
	return finalErr
}
