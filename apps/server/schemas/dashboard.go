package schemas

// DashboardStats is the aggregate user picture for the dashboard.
type DashboardStats struct {
	TotalUsers  int `json:"totalUsers"`
	LocalUsers  int `json:"localUsers"`
	GoogleUsers int `json:"googleUsers"`
	GithubUsers int `json:"githubUsers"`
	NewUsers30d int `json:"newUsersLast30Days"`
}

// UserList is a page of users with its pagination envelope.
type UserList struct {
	Users       []User `json:"users"`
	Total       int    `json:"total"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}
