package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"github.com/pzkpfw44/Pulse360-sub000/internal/services"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

type EmployeeHandler struct {
	BaseHandler
	employeeService services.EmployeeService
}

func NewEmployeeHandler(employeeService services.EmployeeService, logger utils.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		BaseHandler:     NewBaseHandler(logger),
		employeeService: employeeService,
	}
}

// CreateEmployee registers an employee that campaigns can target
// @Summary Create employee
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body services.CreateEmployeeRequest true "Employee data"
// @Success 201 {object} models.Employee
// @Failure 422 {object} ErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	employee, err := h.employeeService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployee retrieves an employee by ID
// @Summary Get employee
// @Tags employees
// @Produce json
// @Param id path uint true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	employee, err := h.employeeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

// ListEmployees lists employees with pagination
// @Summary List employees
// @Tags employees
// @Produce json
// @Param department query string false "Department filter"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} PagedResponse
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.EmployeeFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if department := c.Query("department"); department != "" {
		filters.Department = &department
	}

	employees, total, err := h.employeeService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PagedResponse{Items: employees, Total: total})
}
