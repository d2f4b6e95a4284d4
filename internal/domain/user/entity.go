package user

// User represents a registered user.
type User struct {
	ID       int64  // ID is generated by storage
	Email    string // Email is unique and used for lookup and login
	Password string // Password holds the bcrypt hash (or a legacy plaintext value)
}
