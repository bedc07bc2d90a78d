package enums

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)
