package handler

import (
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// SignUp 注册
// POST /api/v1/auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req service.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.svc.SignUp(c.Request.Context(), &req)
	if err != nil {
		handleError(c, "sign up", err)
		return
	}
	Created(c, result)
}

// SignIn 登录
// POST /api/v1/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req service.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.svc.SignIn(c.Request.Context(), &req)
	if err != nil {
		handleError(c, "sign in", err)
		return
	}
	Success(c, result)
}

// SignOut 注销当前token
// POST /api/v1/auth/sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		handleError(c, "sign out", err)
		return
	}
	Success(c, nil)
}

// Me 当前用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		handleError(c, "get current user", err)
		return
	}
	Success(c, user)
}
