package service

import (
	"strconv"
	"time"

	"github.com/sgtmake/storefront-api/internal/constants"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"

	"github.com/google/uuid"
)

// Owner 购物车归属者（用户或游客）
type Owner struct {
	Type string
	Ref  string
}

// UserOwner 用户归属者
func UserOwner(userID uint) Owner {
	return Owner{Type: constants.CartOwnerTypeUser, Ref: strconv.FormatUint(uint64(userID), 10)}
}

// GuestOwner 游客归属者
func GuestOwner(guestID string) Owner {
	return Owner{Type: constants.CartOwnerTypeGuest, Ref: guestID}
}

// IdentityService 游客身份服务
type IdentityService struct {
	guestRepo  repository.GuestIdentityRepository
	expireDays int
}

// NewIdentityService 创建游客身份服务
func NewIdentityService(guestRepo repository.GuestIdentityRepository, expireDays int) *IdentityService {
	if expireDays <= 0 {
		expireDays = 30
	}
	return &IdentityService{guestRepo: guestRepo, expireDays: expireDays}
}

// Resolve 校验客户端携带的游客标识。
// 标识不存在或已过期时返回 nil（调用方应当清除客户端令牌）。
func (s *IdentityService) Resolve(guestID string) (*models.GuestIdentity, error) {
	if guestID == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(guestID); err != nil {
		return nil, nil
	}
	identity, err := s.guestRepo.GetByID(guestID)
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.Expired(time.Now()) {
		return nil, nil
	}
	return identity, nil
}

// Issue 签发新的游客身份
func (s *IdentityService) Issue() (*models.GuestIdentity, error) {
	identity := &models.GuestIdentity{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().AddDate(0, 0, s.expireDays),
	}
	if err := s.guestRepo.Create(identity); err != nil {
		return nil, err
	}
	logger.Debugw("guest_identity_issued", "guest_id", identity.ID, "expires_at", identity.ExpiresAt)
	return identity, nil
}

// EnsureGuest 复用有效标识，否则签发新身份。返回值第二项表示是否新签发。
func (s *IdentityService) EnsureGuest(guestID string) (*models.GuestIdentity, bool, error) {
	identity, err := s.Resolve(guestID)
	if err != nil {
		return nil, false, err
	}
	if identity != nil {
		return identity, false, nil
	}
	issued, err := s.Issue()
	if err != nil {
		return nil, false, err
	}
	return issued, true, nil
}

// PurgeExpired 清理过期游客身份，返回清理数量
func (s *IdentityService) PurgeExpired() (int64, error) {
	return s.guestRepo.DeleteExpired(time.Now())
}
