package handlers

import (
	"tmig/pkg/config"
	"tmig/pkg/jwt"
	"tmig/pkg/logger"
	"tmig/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest 操作员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler 操作员认证处理器。迁移服务只有环境配置的管理员账号，
// 没有用户体系
type AuthHandler struct {
	cfg        *config.Config
	jwtManager *jwt.JWTManager
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		cfg:        cfg,
		jwtManager: jwt.GetJWTManager(),
	}
}

// Login 操作员登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if h.cfg.Admin.PasswordHash == "" {
		response.ServerError(c, "未配置操作员账号")
		return
	}

	if req.Username != h.cfg.Admin.Username {
		response.Unauthorized(c, "账号或密码错误")
		return
	}
	err := bcrypt.CompareHashAndPassword([]byte(h.cfg.Admin.PasswordHash), []byte(req.Password))
	if err != nil {
		response.Unauthorized(c, "账号或密码错误")
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username, true)
	if err != nil {
		logger.GetLogger().WithError(err).Error("生成令牌失败")
		response.ServerError(c, "生成令牌失败")
		return
	}

	response.Success(c, gin.H{
		"token":    token,
		"username": req.Username,
	})
}
