package application

// Action names an operation subject to role checks.
type Action string

const (
	ActionViewProfile           Action = "profile.view"
	ActionUpdateProfile         Action = "profile.update"
	ActionAttachResume          Action = "profile.resume"
	ActionCreateJob             Action = "job.create"
	ActionListJobs              Action = "job.list"
	ActionApply                 Action = "application.apply"
	ActionListOwnApplications   Action = "application.list_own"
	ActionListAllApplications   Action = "application.list_all"
	ActionListJobApplications   Action = "application.list_job"
	ActionViewApplication       Action = "application.view"
	ActionTransitionApplication Action = "application.transition"
	ActionAnnotateApplication   Action = "application.annotate"
	ActionViewDashboard         Action = "stats.dashboard"
	ActionListMessages          Action = "message.list"
)

var everyone = []Role{RoleStudent, RoleOfficer, RoleRecruiter}

var policy = map[Action][]Role{
	ActionViewProfile:           everyone,
	ActionUpdateProfile:         everyone,
	ActionAttachResume:          {RoleStudent},
	ActionCreateJob:             {RoleOfficer},
	ActionListJobs:              everyone,
	ActionApply:                 {RoleStudent},
	ActionListOwnApplications:   {RoleStudent},
	ActionListAllApplications:   {RoleOfficer},
	ActionListJobApplications:   {RoleOfficer},
	ActionViewApplication:       {RoleStudent, RoleOfficer},
	ActionTransitionApplication: {RoleOfficer},
	ActionAnnotateApplication:   {RoleOfficer},
	ActionViewDashboard:         {RoleOfficer},
	ActionListMessages:          {RoleOfficer},
}

// Authorize checks that principal may perform action. Resource ownership is
// checked separately by the services.
func Authorize(principal Principal, action Action) error {
	if !principal.Authenticated() {
		return ErrUnauthenticated
	}
	for _, role := range policy[action] {
		if principal.Role == role {
			return nil
		}
	}
	return ErrUnauthorized
}

// ownsJob reports whether principal posted job.
func ownsJob(principal Principal, job Job) bool {
	return principal.Role == RoleOfficer && job.PostedBy != "" && job.PostedBy == principal.UserID
}

// canViewApplication applies the ownership rule for a single application.
func canViewApplication(principal Principal, app Application, job *Job) bool {
	switch principal.Role {
	case RoleStudent:
		return app.StudentID == principal.UserID
	case RoleOfficer:
		return job != nil && ownsJob(principal, *job)
	}
	return false
}
