package entity

// Session is the authenticated identity passed explicitly into every role action
type Session struct {
	UserID             string
	Role               Role
	TokenID            string
	MustChangePassword bool
}
