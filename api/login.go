package api

import "context"

type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the token and the profile of the user. The whole response
// is kept as the cached profile.
type LoginResponse struct {
	Token      string `json:"token"`
	UserID     int    `json:"userId,omitempty"`
	UserName   string `json:"userName"`
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	EmployeeID int    `json:"employeeId,omitempty"`
}

func (c Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	return post[LoginRequest, LoginResponse](ctx, c, "/auth/login", req, "Login failed")
}
