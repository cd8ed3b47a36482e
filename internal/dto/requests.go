package dto

// RegisterRequest — тело запроса регистрации.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest — тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest — тело запроса обновления профиля.
type UpdateProfileRequest struct {
	Skills      []string `json:"skills"`
	Experience  *string  `json:"experience"`
	HourlyRate  *string  `json:"hourly_rate"`
	CompanyName *string  `json:"company_name"`
}

// AmountRequest — тело запроса с денежной суммой.
// Сумма передаётся строкой, чтобы не терять точность на float.
type AmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// PostJobRequest — тело запроса публикации работы.
type PostJobRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Budget         string   `json:"budget" binding:"required"`
	SkillsRequired []string `json:"skills_required"`
	Duration       *string  `json:"duration"`
}

// AddMilestoneRequest — тело запроса добавления вехи.
type AddMilestoneRequest struct {
	Title   string `json:"title" binding:"required"`
	Payment string `json:"payment" binding:"required"`
}
