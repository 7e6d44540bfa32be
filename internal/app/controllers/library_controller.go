package controllers

import (
	"net/http"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/app/services"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
)

// LibraryController handles the book catalogue and loans
type LibraryController struct {
	libraryService services.LibraryService
}

// NewLibraryController creates a new LibraryController
func NewLibraryController(libraryService services.LibraryService) *LibraryController {
	return &LibraryController{libraryService: libraryService}
}

// CreateBook adds a book to a campus catalogue
// @Summary Add book
// @Tags library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BookRequest true "Book details"
// @Success 201 {object} dto.APIResponse{data=models.Book}
// @Failure 400 {object} dto.ErrorResponse "Invalid ISBN or copies"
// @Failure 409 {object} dto.ErrorResponse "ISBN already catalogued"
// @Router /library/books [post]
func (c *LibraryController) CreateBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.BookRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	book, err := c.libraryService.CreateBook(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(book, "Book added"))
}

// GetBook retrieves a book
// @Summary Get book
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=models.Book}
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /library/books/{id} [get]
func (c *LibraryController) GetBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Book")
	if !ok {
		return
	}

	book, err := c.libraryService.GetBook(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, ""))
}

// ListBooks searches the catalogue
// @Summary List books
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param campusId query int false "Filter by campus"
// @Param category query string false "Filter by category"
// @Param available query bool false "Only books with copies on the shelf"
// @Param search query string false "Match title, author or ISBN"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.Book}
// @Router /library/books [get]
func (c *LibraryController) ListBooks(ctx *gin.Context) {
	campusID, ok := queryInt64(ctx, "campusId")
	if !ok {
		return
	}
	available, ok := queryBool(ctx, "available")
	if !ok {
		return
	}
	filter := dto.BookFilter{
		CampusID:  campusID,
		Category:  queryString(ctx, "category"),
		Available: available,
		Search:    queryString(ctx, "search"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	books, total, err := c.libraryService.ListBooks(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, books, total, page, size)
}

// UpdateBook updates a catalogue entry
// @Summary Update book
// @Tags library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body dto.BookRequest true "Book details"
// @Success 200 {object} dto.APIResponse{data=models.Book}
// @Failure 409 {object} dto.ErrorResponse "Total copies below copies on loan"
// @Router /library/books/{id} [put]
func (c *LibraryController) UpdateBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Book")
	if !ok {
		return
	}
	var req dto.BookRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	book, err := c.libraryService.UpdateBook(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book, "Book updated"))
}

// DeleteBook removes a book with no loan history
// @Summary Delete book
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Book has loan history"
// @Router /library/books/{id} [delete]
func (c *LibraryController) DeleteBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Book")
	if !ok {
		return
	}

	if err := c.libraryService.DeleteBook(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Book deleted"))
}

// IssueBook lends a copy to a student
// @Summary Issue book
// @Tags library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.IssueBookRequest true "Book and student"
// @Success 201 {object} dto.APIResponse{data=models.BookIssue}
// @Failure 400 {object} dto.ErrorResponse "Student not active or on another campus"
// @Failure 409 {object} dto.ErrorResponse "No copies available or borrowing limit reached"
// @Router /library/issues [post]
func (c *LibraryController) IssueBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.IssueBookRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	issue, err := c.libraryService.IssueBook(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(issue, "Book issued"))
}

// ReturnBook records a return and any overdue fine
// @Summary Return book
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} dto.APIResponse{data=models.BookIssue}
// @Failure 409 {object} dto.ErrorResponse "Already returned"
// @Router /library/issues/{id}/return [post]
func (c *LibraryController) ReturnBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Issue")
	if !ok {
		return
	}

	issue, err := c.libraryService.ReturnBook(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(issue, "Book returned"))
}

// GetIssue retrieves a loan
// @Summary Get book issue
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} dto.APIResponse{data=models.BookIssue}
// @Failure 404 {object} dto.ErrorResponse "Issue not found"
// @Router /library/issues/{id} [get]
func (c *LibraryController) GetIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Issue")
	if !ok {
		return
	}

	issue, err := c.libraryService.GetIssue(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(issue, ""))
}

// ListIssues lists loans; OVERDUE is derived from the due date
// @Summary List book issues
// @Tags library
// @Produce json
// @Security BearerAuth
// @Param bookId query int false "Filter by book"
// @Param studentId query int false "Filter by student"
// @Param status query string false "ISSUED, RETURNED or OVERDUE"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=[]models.BookIssue}
// @Router /library/issues [get]
func (c *LibraryController) ListIssues(ctx *gin.Context) {
	bookID, ok := queryInt64(ctx, "bookId")
	if !ok {
		return
	}
	studentID, ok := queryInt64(ctx, "studentId")
	if !ok {
		return
	}
	filter := dto.BookIssueFilter{
		BookID:    bookID,
		StudentID: studentID,
		Status:    queryEnum[models.BookIssueStatus](ctx, "status"),
	}
	page, size := helpers.ParsePaginationParams(ctx)

	issues, total, err := c.libraryService.ListIssues(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, issues, total, page, size)
}
