package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

type CreateEmployeeRequest struct {
	FullName   string  `json:"full_name" validate:"required,min=1,max=200"`
	Email      string  `json:"email" validate:"required,email"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=120"`
	Department *string `json:"department" validate:"omitempty,max=120"`
}

// EmployeeService manages the people campaigns can target.
type EmployeeService interface {
	Create(ctx context.Context, req *CreateEmployeeRequest) (*models.Employee, error)
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	List(ctx context.Context, filters repositories.EmployeeFilters) ([]*models.Employee, int64, error)
}

type employeeService struct {
	repo      repositories.Repository
	validator *utils.Validator
	logger    *slog.Logger
}

func NewEmployeeService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) EmployeeService {
	return &employeeService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *employeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.Employee().GetByEmail(ctx, email)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check employee email: %w", err)
	}
	if existing != nil {
		return nil, NewBusinessRuleError("duplicate_email",
			"an employee with this email already exists",
			map[string]interface{}{"email": email})
	}

	employee := &models.Employee{
		FullName:   req.FullName,
		Email:      email,
		JobTitle:   req.JobTitle,
		Department: req.Department,
	}
	if err := s.repo.Employee().Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("Employee created", "employee_id", employee.ID)
	return employee, nil
}

func (s *employeeService) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.repo.Employee().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

func (s *employeeService) List(ctx context.Context, filters repositories.EmployeeFilters) ([]*models.Employee, int64, error) {
	employees, total, err := s.repo.Employee().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}
