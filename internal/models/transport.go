package models

type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterResp struct {
	Message string `json:"message"`
	UserID  uint64 `json:"userId"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResp struct {
	Message string      `json:"message"`
	Account AccountResp `json:"account"`
}

type EmailReq struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordReq struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ListEntryReq struct {
	UserID     uint64  `json:"userId" validate:"required"`
	MovieID    uint64  `json:"movieId" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	PosterPath *string `json:"posterPath"`
	Category   string  `json:"category" validate:"required,category"`
}

// ListChangeReq is the body of move and remove.
type ListChangeReq struct {
	UserID   uint64 `json:"userId" query:"userId" validate:"required"`
	MovieID  uint64 `json:"movieId" query:"movieId" validate:"required"`
	Category string `json:"category" query:"category" validate:"required,category"`
}

type ListEntryResp struct {
	MovieID    uint64  `json:"movieId"`
	Title      string  `json:"title"`
	PosterPath *string `json:"posterPath"`
	Category   string  `json:"category"`
}

type MessageResp struct {
	Message string `json:"message"`
}
