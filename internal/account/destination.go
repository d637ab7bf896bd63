package account

import "github.com/AdilMir1433/User-Service/internal/model"

// Destination is where the client should navigate after a login step.
type Destination string

const (
	DestinationStudentDashboard Destination = "student-dashboard"
	DestinationTeacherDashboard Destination = "teacher-dashboard"
	DestinationWelcome          Destination = "welcome"
	DestinationVerifyToken      Destination = "verify-token"
	DestinationLogin            Destination = "login"
)

func (d Destination) Path() string {
	return "/ui/" + string(d)
}

var dashboards = map[model.Role]Destination{
	model.RoleStudent: DestinationStudentDashboard,
	model.RoleTeacher: DestinationTeacherDashboard,
}

// DashboardFor routes an authenticated user by role. Roles without a
// dashboard land on the welcome page.
func DashboardFor(role model.Role) Destination {
	if d, ok := dashboards[role]; ok {
		return d
	}
	return DestinationWelcome
}
