package user

// RegisterRequest represents the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for updating the profile
type UpdateUserRequest struct {
	Username           *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	EmailNotifications bool   `json:"email_notifications"`
	CreatedAt          string `json:"created_at"`
}

// AuthResponse is returned on successful register/login
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		EmailNotifications: u.EmailNotifications,
		CreatedAt:          u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
