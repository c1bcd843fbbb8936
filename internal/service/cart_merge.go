package service

import (
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"

	"gorm.io/gorm"
)

// CartMergeService 游客购物车合并服务。登录时执行一次，
// 整个合并在单个事务内完成，任一步失败即整体回滚。
type CartMergeService struct {
	cartRepo  repository.CartRepository
	guestRepo repository.GuestIdentityRepository
}

// NewCartMergeService 创建合并服务
func NewCartMergeService(cartRepo repository.CartRepository, guestRepo repository.GuestIdentityRepository) *CartMergeService {
	return &CartMergeService{cartRepo: cartRepo, guestRepo: guestRepo}
}

// MergeGuestIntoUser 把游客购物车合并进用户购物车。
// 游客身份是一次性凭证：事务最后一步条件删除身份行，
// 0 行表示并发合并已抢先，当前事务整体回滚，保证至多合并一次。
// 合并规则：
//   - 用户无购物车：整车改挂归属（不逐行搬运）。
//   - 定制行：无条件追加。
//   - 目录行：用户车已有相同 (product_id, variant) 时丢弃游客行
//     （不累加数量，用户行胜出），否则搬运过去。
func (s *CartMergeService) MergeGuestIntoUser(guestID string, userID uint) error {
	if guestID == "" || userID == 0 {
		return nil
	}
	guestOwner := GuestOwner(guestID)
	userOwner := UserOwner(userID)

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		guestRepo := s.guestRepo.WithTx(tx)

		guestCart, err := cartRepo.GetByOwner(guestOwner.Type, guestOwner.Ref)
		if err != nil {
			return err
		}
		if guestCart == nil {
			// 没有游客车也要消费身份，否则残留身份可被重复使用
			rows, err := guestRepo.ConsumeByID(guestID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrGuestMergeConflict
			}
			return nil
		}

		userCart, err := cartRepo.GetByOwner(userOwner.Type, userOwner.Ref)
		if err != nil {
			return err
		}

		if userCart == nil {
			if err := cartRepo.ReassignOwner(guestCart.ID, userOwner.Type, userOwner.Ref); err != nil {
				return err
			}
		} else {
			for _, item := range guestCart.Items {
				if item.IsCustom() {
					if err := cartRepo.MoveItem(item.ID, userCart.ID); err != nil {
						return err
					}
					continue
				}
				existing, err := cartRepo.FindCatalogItem(userCart.ID, *item.ProductID, item.Variant)
				if err != nil {
					return err
				}
				if existing != nil {
					if err := cartRepo.DeleteItem(item.ID); err != nil {
						return err
					}
					continue
				}
				if err := cartRepo.MoveItem(item.ID, userCart.ID); err != nil {
					return err
				}
			}
			if err := cartRepo.DeleteCart(guestCart.ID); err != nil {
				return err
			}
		}

		rows, err := guestRepo.ConsumeByID(guestID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrGuestMergeConflict
		}
		return nil
	})
	if err != nil {
		logger.Warnw("cart_merge_failed", "guest_id", guestID, "user_id", userID, "error", err)
		return err
	}

	logger.Infow("cart_merge_completed", "guest_id", guestID, "user_id", userID)
	return nil
}
