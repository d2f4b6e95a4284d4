package user

// CreateUserRequest represents the request payload for registering a user.
type CreateUserRequest struct {
	Email    string `validate:"required,max=255"`
	Password string `validate:"required,max=72"`
}

// AuthenticateRequest carries login credentials.
type AuthenticateRequest struct {
	Email    string
	Password string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// User is the user as returned to callers. It never carries the password.
type User struct {
	ID    int64
	Email string
}
