package postgres

import (
	"context"
	"fmt"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"gorm.io/gorm"
)

type EmployeePostgreSQL struct {
	db *gorm.DB
}

func NewEmployeePostgreSQL(db *gorm.DB) repositories.EmployeeRepository {
	return &EmployeePostgreSQL{db: db}
}

func (e *EmployeePostgreSQL) Create(ctx context.Context, employee *models.Employee) error {
	if err := e.db.WithContext(ctx).Create(employee).Error; err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (e *EmployeePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := e.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (e *EmployeePostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	if err := e.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (e *EmployeePostgreSQL) List(ctx context.Context, filters repositories.EmployeeFilters) ([]*models.Employee, int64, error) {
	query := e.db.WithContext(ctx).Model(&models.Employee{})

	if filters.Department != nil {
		query = query.Where("department = ?", *filters.Department)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query = applyPagination(query.Order("full_name asc"), filters.Limit, filters.Offset)

	var employees []*models.Employee
	if err := query.Find(&employees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}
