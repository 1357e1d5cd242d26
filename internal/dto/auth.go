package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 学生自助注册请求
type RegisterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Email     string `json:"email"      binding:"required,email,max=255"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	Matricule string `json:"matricule"  binding:"required,max=50"`
	Filiere   string `json:"filiere"    binding:"required,max=100"`
	StageType string `json:"stage_type" binding:"required,oneof=PFE stage_ete"`
	Phone     string `json:"phone"      binding:"omitempty,max=30"`
}

// TokenResponse 签发的 Token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // 秒
	User        UserResponse `json:"user"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest 修改个人资料请求，Specialite 仅对教师生效
type UpdateProfileRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email,max=255"`
	Phone      *string `json:"phone"      binding:"omitempty,max=30"`
	Specialite *string `json:"specialite" binding:"omitempty,max=150"`
}

// ProfileResponse 当前账号及其角色档案
type ProfileResponse struct {
	User      UserResponse       `json:"user"`
	Student   *StudentResponse   `json:"student,omitempty"`
	Professor *ProfessorResponse `json:"professor,omitempty"`
}
