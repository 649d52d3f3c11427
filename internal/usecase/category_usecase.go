package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	repo domain.CategoryRepository
	log  *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		repo: repo,
		log:  logger,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrInvalidInput)
	}

	category, err := uc.repo.Create(ctx, &domain.Category{Name: name})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Category '%s' created with ID %d", category.Name, category.ID)
	return category, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid category ID", domain.ErrInvalidInput)
	}
	return uc.repo.GetByID(ctx, id)
}

func (uc *categoryUseCase) RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid category ID", domain.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", domain.ErrInvalidInput)
	}

	category, err := uc.repo.Update(ctx, &domain.Category{ID: id, Name: name})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to rename category %d: %v", id, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category ID", domain.ErrInvalidInput)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Category %d deleted", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.repo.List(ctx)
}
