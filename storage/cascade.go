package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

// The delete cascade is an explicit walk of the ownership graph rather
// than ORM cascade configuration: User -> Member -> memberships, routes
// owned by the member (with their attraction entries and ratings),
// notebooks and ratings authored by the member. Groups the member
// created are NOT deleted; only their membership rows go away.

// CascadeStore is the slice of the store the walk needs. The production
// implementation runs inside one transaction.
type CascadeStore interface {
	MemberOfUser(userID uint) (*models.Member, error)
	RouteIDsOwnedByMember(memberID uint) ([]uint, error)
	DeleteRouteChildren(routeIDs []uint) error
	DeleteRoutes(routeIDs []uint) error
	DeleteNotebooksOfMember(memberID uint) error
	DeleteRatingsOfMember(memberID uint) error
	DeleteMemberships(memberID uint) error
	DeleteMember(memberID uint) error
	DeleteUser(userID uint) error
}

// RunUserCascade deletes a user and everything its member profile owns,
// children before parents.
func RunUserCascade(s CascadeStore, userID uint) error {
	member, err := s.MemberOfUser(userID)
	if err != nil {
		return err
	}

	if member != nil {
		routeIDs, err := s.RouteIDsOwnedByMember(member.ID)
		if err != nil {
			return err
		}
		if len(routeIDs) > 0 {
			if err := s.DeleteRouteChildren(routeIDs); err != nil {
				return err
			}
			if err := s.DeleteRoutes(routeIDs); err != nil {
				return err
			}
		}
		if err := s.DeleteNotebooksOfMember(member.ID); err != nil {
			return err
		}
		if err := s.DeleteRatingsOfMember(member.ID); err != nil {
			return err
		}
		if err := s.DeleteMemberships(member.ID); err != nil {
			return err
		}
		if err := s.DeleteMember(member.ID); err != nil {
			return err
		}
	}

	return s.DeleteUser(userID)
}

// DeleteUserCascade runs the walk inside a transaction on the app database.
func DeleteUserCascade(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return RunUserCascade(gormCascadeStore{tx}, userID)
	})
}

type gormCascadeStore struct {
	tx *gorm.DB
}

func (s gormCascadeStore) MemberOfUser(userID uint) (*models.Member, error) {
	var member models.Member
	err := s.tx.Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (s gormCascadeStore) RouteIDsOwnedByMember(memberID uint) ([]uint, error) {
	var ids []uint
	err := s.tx.Model(&models.Route{}).Where("user_id = ?", memberID).Pluck("id", &ids).Error
	return ids, err
}

func (s gormCascadeStore) DeleteRouteChildren(routeIDs []uint) error {
	if err := s.tx.Where("route_id IN ?", routeIDs).Delete(&models.IsWithin{}).Error; err != nil {
		return err
	}
	if err := s.tx.Where("route_id IN ?", routeIDs).Delete(&models.RatingFlag{}).Error; err != nil {
		return err
	}
	return s.tx.Where("route_id IN ?", routeIDs).Delete(&models.Notebook{}).Error
}

func (s gormCascadeStore) DeleteRoutes(routeIDs []uint) error {
	return s.tx.Unscoped().Where("id IN ?", routeIDs).Delete(&models.Route{}).Error
}

func (s gormCascadeStore) DeleteNotebooksOfMember(memberID uint) error {
	return s.tx.Where("member_id = ?", memberID).Delete(&models.Notebook{}).Error
}

func (s gormCascadeStore) DeleteRatingsOfMember(memberID uint) error {
	return s.tx.Where("member_id = ?", memberID).Delete(&models.RatingFlag{}).Error
}

func (s gormCascadeStore) DeleteMemberships(memberID uint) error {
	return s.tx.Where("member_id = ?", memberID).Delete(&models.BelongsTo{}).Error
}

func (s gormCascadeStore) DeleteMember(memberID uint) error {
	return s.tx.Unscoped().Delete(&models.Member{}, memberID).Error
}

func (s gormCascadeStore) DeleteUser(userID uint) error {
	return s.tx.Unscoped().Delete(&models.User{}, userID).Error
}
