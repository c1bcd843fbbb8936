package public

import (
	"github.com/sgtmake/storefront-api/internal/constants"
	handlershared "github.com/sgtmake/storefront-api/internal/http/handlers/shared"
	"github.com/sgtmake/storefront-api/internal/http/response"
	"github.com/sgtmake/storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

const guestCookieMaxAge = 30 * 24 * 3600

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// optionalUserID 读取可选的登录态，未登录时返回 false 且不写错误响应
func optionalUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	if id, ok := value.(uint); ok && id > 0 {
		return id, true
	}
	return 0, false
}

// guestCookieValue 读取游客身份 cookie
func guestCookieValue(c *gin.Context) string {
	value, err := c.Cookie(constants.GuestCookieName)
	if err != nil {
		return ""
	}
	return value
}

func setGuestCookie(c *gin.Context, guestID string) {
	c.SetCookie(constants.GuestCookieName, guestID, guestCookieMaxAge, "/", "", false, true)
}

func clearGuestCookie(c *gin.Context) {
	c.SetCookie(constants.GuestCookieName, "", -1, "/", "", false, true)
}

// resolveOwner 解析购物车归属者（写路径）。登录用户优先；
// 否则复用或签发游客身份并写回 cookie。
func (h *Handler) resolveOwner(c *gin.Context) (service.Owner, bool) {
	if userID, ok := optionalUserID(c); ok {
		return service.UserOwner(userID), true
	}

	identity, created, err := h.IdentityService.EnsureGuest(guestCookieValue(c))
	if err != nil {
		respondError(c, response.CodeInternal, "guest identity resolve failed", err)
		return service.Owner{}, false
	}
	if created {
		setGuestCookie(c, identity.ID)
	}
	return service.GuestOwner(identity.ID), true
}

// resolveOwnerReadOnly 解析购物车归属者（只读路径）：从不签发新游客身份。
// 无登录态且游客标识缺失或失效时返回 found=false，调用方按空购物车处理；
// 失效的游客 cookie 顺带清除。
func (h *Handler) resolveOwnerReadOnly(c *gin.Context) (owner service.Owner, found bool, err error) {
	if userID, ok := optionalUserID(c); ok {
		return service.UserOwner(userID), true, nil
	}

	cookie := guestCookieValue(c)
	if cookie == "" {
		return service.Owner{}, false, nil
	}
	identity, err := h.IdentityService.Resolve(cookie)
	if err != nil {
		return service.Owner{}, false, err
	}
	if identity == nil {
		clearGuestCookie(c)
		return service.Owner{}, false, nil
	}
	return service.GuestOwner(identity.ID), true, nil
}
