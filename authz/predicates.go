package authz

import "github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"

// IsSelf reports whether the requester's account is the one the member
// profile wraps.
func IsSelf(id *Identity, member *models.Member) bool {
	return !id.Anonymous() && member != nil && member.UserID == id.UserID
}

// IsMember reports whether the requester belongs to the group. A missing
// membership row resolves to false, never to an error.
func IsMember(s Store, id *Identity, groupID uint) (bool, error) {
	if id.Anonymous() {
		return false, nil
	}
	row, err := s.Membership(id.MemberID, groupID)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// IsGroupAdmin reports whether the requester administers the group.
func IsGroupAdmin(s Store, id *Identity, groupID uint) (bool, error) {
	if id.Anonymous() {
		return false, nil
	}
	row, err := s.Membership(id.MemberID, groupID)
	if err != nil {
		return false, err
	}
	return row != nil && row.IsAdmin, nil
}

// IsOwner reports whether the requester's member profile owns the entity.
func IsOwner(id *Identity, ownerMemberID uint) bool {
	return !id.Anonymous() && ownerMemberID != 0 && ownerMemberID == id.MemberID
}

// RouteIsVisible is the read gate for a route and everything scoped to
// it: public routes are visible to any authenticated requester, private
// ones only to the owning member or the owning group's members.
func RouteIsVisible(s Store, id *Identity, route *models.Route) (bool, error) {
	if id.Anonymous() {
		return false, nil
	}
	if route.Public {
		return true, nil
	}
	return RouteCanModify(s, id, route)
}

// RouteCanModify is the write gate for a route and its child entities:
// the ownership and group-membership branches only. A public flag does
// not grant write access.
func RouteCanModify(s Store, id *Identity, route *models.Route) (bool, error) {
	if id.Anonymous() {
		return false, nil
	}
	if route.OwnedByMember() {
		return IsOwner(id, *route.UserID), nil
	}
	if route.OwnedByGroup() {
		return IsMember(s, id, *route.GroupID)
	}
	return false, nil
}
