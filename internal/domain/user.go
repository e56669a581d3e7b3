package domain

import (
	"time"
)

// SignUpType records how a user account was created.
type SignUpType string

const (
	SignUpTypeEmail SignUpType = "email"
	SignUpTypeKakao SignUpType = "kakao"
)

// User represents a registered member.
type User struct {
	ID           string     `json:"id"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Gender       bool       `json:"gender"`
	IsPublic     bool       `json:"isPublic"`
	SignUpType   SignUpType `json:"signUpType"`
	ProviderID   string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// SignUpForm is the email sign-up request sent by the web client.
type SignUpForm struct {
	Nickname string `json:"nickname" binding:"required,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
	Gender   bool   `json:"gender"`
	IsPublic bool   `json:"isPublic"`
}

// SignInForm is the email/password sign-in request.
type SignInForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// KakaoAuthURL is the consent page a web client opens to start Kakao sign-in.
// State is echoed back by Kakao on the redirect for the client to compare.
type KakaoAuthURL struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID         string     `json:"id"`
	Nickname   string     `json:"nickname"`
	Email      string     `json:"email"`
	Gender     bool       `json:"gender"`
	IsPublic   bool       `json:"isPublic"`
	SignUpType SignUpType `json:"signUpType"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Nickname:   u.Nickname,
		Email:      u.Email,
		Gender:     u.Gender,
		IsPublic:   u.IsPublic,
		SignUpType: u.SignUpType,
		CreatedAt:  u.CreatedAt,
	}
}

// KakaoProfile is the subset of the Kakao user profile used for sign-in.
type KakaoProfile struct {
	ID       string
	Nickname string
	Email    string
	// EmailVerified is set only when Kakao reports the email as both verified and valid.
	EmailVerified bool
}
