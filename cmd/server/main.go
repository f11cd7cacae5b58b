package main

// @title           Farmhand API
// @version         1.0
// @description     Farm operations: job logs, approvals, payroll and dashboards
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token
func main() {
	Execute()
}
