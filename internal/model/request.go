package model

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type CreateBookRequest struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedDate *string `json:"published_date"`
	Available     *bool   `json:"available"`
}

type UpdateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedDate *string `json:"published_date"`
	Available     *bool   `json:"available"`
}

func (r UpdateBookRequest) Patch() BookPatch {
	return BookPatch{
		Title:         r.Title,
		Author:        r.Author,
		PublishedDate: r.PublishedDate,
		Available:     r.Available,
	}
}
