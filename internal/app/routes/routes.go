package routes

import (
	"github.com/campusly/campusly/internal/app/controllers"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/websocket"
	"github.com/gin-gonic/gin"
)

// Controllers groups every HTTP handler mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	User        *controllers.UserController
	Campus      *controllers.CampusController
	Department  *controllers.DepartmentController
	Program     *controllers.ProgramController
	Admission   *controllers.AdmissionController
	Student     *controllers.StudentController
	Employee    *controllers.EmployeeController
	Attendance  *controllers.AttendanceController
	Payroll     *controllers.PayrollController
	Certificate *controllers.CertificateController
	Library     *controllers.LibraryController
	Timetable   *controllers.TimetableController
	Notice      *controllers.NoticeController
	Live        *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	v1.POST("/admissions/applications", c.Admission.SubmitApplication)
	v1.GET("/programs", c.Program.ListPrograms)
	v1.GET("/programs/:id", c.Program.GetProgramByID)
	v1.GET("/certificates/verify/:serial", c.Certificate.VerifyCertificate)
	v1.GET("/notices/active", c.Notice.ListActiveNotices)
	v1.GET("/notices/live", c.Live.ServeNotices)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ActiveAccountRequired())

	role := authMiddleware.RoleRequired

	users := authenticated.Group("/users")
	{
		users.GET("/me", c.User.GetUserProfile)

		admin := users.Group("", role(models.RoleAdmin))
		admin.POST("", c.User.CreateUser)
		admin.GET("", c.User.ListUsers)
		admin.GET("/:id", c.User.GetUserByID)
		admin.PATCH("/:id/status", c.User.UpdateUserStatus)
	}

	campuses := authenticated.Group("/campuses")
	{
		campuses.GET("", c.Campus.ListCampuses)
		campuses.GET("/:id", c.Campus.GetCampusByID)

		root := campuses.Group("", role(models.RoleSuperAdmin))
		root.POST("", c.Campus.CreateCampus)
		root.PUT("/:id", c.Campus.UpdateCampus)
		root.DELETE("/:id", c.Campus.DeleteCampus)
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Department.GetAllDepartments)
		departments.GET("/:id", c.Department.GetDepartmentByID)

		admin := departments.Group("", role(models.RoleAdmin))
		admin.POST("", c.Department.CreateDepartment)
		admin.PUT("/:id", c.Department.UpdateDepartment)
		admin.DELETE("/:id", c.Department.DeleteDepartment)
	}

	programs := authenticated.Group("/programs", role(models.RoleAdmin))
	{
		programs.POST("", c.Program.CreateProgram)
		programs.PUT("/:id", c.Program.UpdateProgram)
		programs.DELETE("/:id", c.Program.DeleteProgram)
	}

	admissions := authenticated.Group("/admissions", role(models.RoleAdmin, models.RoleAdmissionOfficer))
	{
		admissions.GET("/applications", c.Admission.ListApplications)
		admissions.GET("/applications/:id", c.Admission.GetApplication)
		admissions.PUT("/applications/:id", c.Admission.UpdateApplication)
		admissions.PATCH("/applications/:id/status", c.Admission.UpdateApplicationStatus)
		admissions.DELETE("/applications/:id", c.Admission.DeleteApplication)
		admissions.POST("/applications/:id/documents", c.Admission.UploadDocument)
		admissions.GET("/applications/:id/documents", c.Admission.ListDocuments)
		admissions.POST("/applications/:id/enroll", c.Admission.Enroll)
		admissions.POST("/merit-lists", c.Admission.GenerateMeritList)
		admissions.GET("/merit-lists", c.Admission.GetMeritList)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", role(models.RoleAdmin, models.RoleAdmissionOfficer, models.RoleLibrarian, models.RoleTeacher), c.Student.ListStudents)
		students.GET("/:id", role(models.RoleAdmin, models.RoleAdmissionOfficer, models.RoleLibrarian, models.RoleTeacher), c.Student.GetStudentByID)

		write := students.Group("", role(models.RoleAdmin, models.RoleAdmissionOfficer))
		write.POST("", c.Student.CreateStudent)
		write.PUT("/:id", c.Student.UpdateStudent)
		write.DELETE("/:id", c.Student.DeleteStudent)
	}

	employees := authenticated.Group("/employees", role(models.RoleAdmin, models.RoleHR))
	{
		employees.POST("", c.Employee.CreateEmployee)
		employees.GET("", c.Employee.ListEmployees)
		employees.GET("/:id", c.Employee.GetEmployeeByID)
		employees.PUT("/:id", c.Employee.UpdateEmployee)
		employees.DELETE("/:id", c.Employee.DeleteEmployee)
	}

	attendance := authenticated.Group("/attendance")
	{
		attendance.GET("/summary", role(models.RoleAdmin, models.RoleHR, models.RoleAccountant), c.Attendance.GetSummary)

		hr := attendance.Group("", role(models.RoleAdmin, models.RoleHR))
		hr.POST("", c.Attendance.MarkAttendance)
		hr.POST("/bulk", c.Attendance.BulkMarkAttendance)
		hr.GET("", c.Attendance.ListAttendance)
		hr.DELETE("/:id", c.Attendance.DeleteAttendance)
	}

	payroll := authenticated.Group("/payroll")
	{
		hr := payroll.Group("", role(models.RoleAdmin, models.RoleHR, models.RoleAccountant))
		hr.POST("/salary-structures", c.Payroll.CreateSalaryStructure)
		hr.GET("/salary-structures", c.Payroll.ListSalaryStructures)
		hr.GET("/salary-structures/:id", c.Payroll.GetSalaryStructure)
		hr.POST("/tax/calculate", c.Payroll.CalculateTax)
		hr.GET("", c.Payroll.ListPayrolls)
		hr.GET("/:id", c.Payroll.GetPayroll)
		hr.GET("/:id/payslip", c.Payroll.GetPayslip)

		accounts := payroll.Group("", role(models.RoleAdmin, models.RoleAccountant))
		accounts.POST("/process", c.Payroll.ProcessPayroll)
		accounts.POST("/process-bulk", c.Payroll.BulkProcessPayroll)
		accounts.POST("/:id/approve", c.Payroll.ApprovePayroll)
		accounts.POST("/:id/reject", c.Payroll.RejectPayroll)
		accounts.POST("/:id/pay", c.Payroll.PayPayroll)
		accounts.DELETE("/:id", c.Payroll.DeletePayroll)
	}

	certificates := authenticated.Group("/certificates", role(models.RoleAdmin, models.RoleAdmissionOfficer))
	{
		certificates.POST("", c.Certificate.IssueCertificate)
		certificates.GET("", c.Certificate.ListCertificates)
		certificates.GET("/:id", c.Certificate.GetCertificate)
		certificates.POST("/:id/revoke", role(models.RoleAdmin), c.Certificate.RevokeCertificate)
	}

	library := authenticated.Group("/library")
	{
		library.GET("/books", c.Library.ListBooks)
		library.GET("/books/:id", c.Library.GetBook)

		librarian := library.Group("", role(models.RoleAdmin, models.RoleLibrarian))
		librarian.POST("/books", c.Library.CreateBook)
		librarian.PUT("/books/:id", c.Library.UpdateBook)
		librarian.DELETE("/books/:id", c.Library.DeleteBook)
		librarian.POST("/issues", c.Library.IssueBook)
		librarian.GET("/issues", c.Library.ListIssues)
		librarian.GET("/issues/:id", c.Library.GetIssue)
		librarian.POST("/issues/:id/return", c.Library.ReturnBook)
	}

	timetable := authenticated.Group("/timetable")
	{
		timetable.GET("", c.Timetable.ListEntries)
		timetable.GET("/:id", c.Timetable.GetEntry)

		admin := timetable.Group("", role(models.RoleAdmin))
		admin.POST("", c.Timetable.CreateEntry)
		admin.PUT("/:id", c.Timetable.UpdateEntry)
		admin.DELETE("/:id", c.Timetable.DeleteEntry)
	}

	notices := authenticated.Group("/notices")
	{
		notices.GET("", c.Notice.ListNotices)
		notices.GET("/:id", c.Notice.GetNotice)

		admin := notices.Group("", role(models.RoleAdmin))
		admin.POST("", c.Notice.CreateNotice)
		admin.PUT("/:id", c.Notice.UpdateNotice)
		admin.DELETE("/:id", c.Notice.DeleteNotice)
	}
}
