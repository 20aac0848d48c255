package authz

import (
	"errors"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"gorm.io/gorm"
)

// ErrNotFound signals that a referenced entity does not exist. Predicates
// never return it for a missing membership row; only for missing
// referenced entities (group, route, member) that a payload named.
var ErrNotFound = errors.New("authz: entity not found")

// Store provides the handful of point lookups a decision needs. All
// methods are pure reads, so a decision may be evaluated more than once
// per request.
type Store interface {
	MemberByID(id uint) (*models.Member, error)
	GroupByID(id uint) (*models.Group, error)
	RouteByID(id uint) (*models.Route, error)
	// Membership returns nil with no error when the (member, group) row
	// is absent; absence is a defined negative outcome, not a failure.
	Membership(memberID, groupID uint) (*models.BelongsTo, error)
}

// GormStore is the production Store backed by the application database.
type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) MemberByID(id uint) (*models.Member, error) {
	var member models.Member
	if err := s.DB.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s GormStore) GroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.DB.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s GormStore) RouteByID(id uint) (*models.Route, error) {
	var route models.Route
	if err := s.DB.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (s GormStore) Membership(memberID, groupID uint) (*models.BelongsTo, error) {
	var row models.BelongsTo
	err := s.DB.Where("member_id = ? AND group_id = ?", memberID, groupID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
