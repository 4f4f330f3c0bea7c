package routes

var (
	BearerAuth = []map[string][]string{
		{"bearer": {}},
	}
)

type Tag string

const (
	TagHealth       Tag = "health"
	TagAuth         Tag = "auth"
	TagUsers        Tag = "users"
	TagTransactions Tag = "transactions"
	TagDashboard    Tag = "dashboard"
)

func (t Tag) String() string { return string(t) }

func AllTags() []string {
	return []string{
		TagHealth.String(),
		TagAuth.String(),
		TagUsers.String(),
		TagTransactions.String(),
		TagDashboard.String(),
	}
}
