package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	CreateUser(ctx context.Context, in CreateUserRequest) (*User, error)
	Authenticate(ctx context.Context, in AuthenticateRequest) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*User, error)
}
