package public

import (
	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/models"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserRegister 注册新用户；携带游客 cookie 时注册后立即合并购物车
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "register failed")
		return
	}

	h.mergeGuestCart(c, user.ID)
	response.Success(c, AuthResponse{Token: token, ExpiresAt: expiresAt.Unix(), User: user})
}

// UserLogin 登录；携带游客 cookie 时登录后立即合并购物车
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "login failed")
		return
	}

	h.mergeGuestCart(c, user.ID)
	response.Success(c, AuthResponse{Token: token, ExpiresAt: expiresAt.Unix(), User: user})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}
	response.Success(c, user)
}

// mergeGuestCart 认证成功后的一次性购物车合并。
// 合并失败不影响认证结果，只记日志；游客 cookie 总是被清除。
func (h *Handler) mergeGuestCart(c *gin.Context, userID uint) {
	guestID := guestCookieValue(c)
	if guestID == "" {
		return
	}
	identity, err := h.IdentityService.Resolve(guestID)
	if err != nil || identity == nil {
		clearGuestCookie(c)
		return
	}
	if err := h.CartMergeService.MergeGuestIntoUser(identity.ID, userID); err != nil {
		// 并发合并冲突或失败：留给下次读取重试，但本次认证照常完成
		clearGuestCookie(c)
		return
	}
	clearGuestCookie(c)
}
