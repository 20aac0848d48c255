package authz

import (
	"errors"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

// Authorizer decides every action for one resource type. One method per
// action keeps the dispatch typed; an unhandled action cannot compile.
// For payload-dependent creates, E is the submitted payload rather than a
// persisted row.
type Authorizer[E any] interface {
	List(id *Identity) Decision
	Retrieve(id *Identity, target E) Decision
	Create(id *Identity, target E) Decision
	Update(id *Identity, target E) Decision
	PartialUpdate(id *Identity, target E) Decision
	Destroy(id *Identity, target E) Decision
}

// Decide dispatches an action to the matching Authorizer method.
func Decide[E any](a Authorizer[E], action Action, id *Identity, target E) Decision {
	switch action {
	case ActionList:
		return a.List(id)
	case ActionRetrieve:
		return a.Retrieve(id, target)
	case ActionCreate:
		return a.Create(id, target)
	case ActionUpdate:
		return a.Update(id, target)
	case ActionPartialUpdate:
		return a.PartialUpdate(id, target)
	case ActionDestroy:
		return a.Destroy(id, target)
	}
	return Forbidden("unsupported action")
}

func storeFailure(err error) Decision {
	if errors.Is(err, ErrNotFound) {
		return NotFound("referenced entity does not exist")
	}
	// Store errors other than absence are genuinely exceptional; deny
	// without leaking detail.
	return Forbidden("authorization lookup failed")
}

// requireAuth is the shared first step of almost every rule.
func requireAuth(id *Identity) (Decision, bool) {
	if id.Anonymous() {
		return Unauthenticated(), false
	}
	return Decision{}, true
}

// ----- Member -----

// Members gates the member profile resource. Reads are open to any
// authenticated requester (the handler decides between the full and the
// reduced profile); writes are self-only.
type Members struct{ Store Store }

func (a Members) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Members) Retrieve(id *Identity, member *models.Member) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

// Create is registration; anonymous requesters are exactly who it is for.
func (a Members) Create(id *Identity, member *models.Member) Decision { return Allow() }

func (a Members) Update(id *Identity, member *models.Member) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !IsSelf(id, member) {
		return Forbidden("only the profile's own user may modify it")
	}
	return Allow()
}

func (a Members) PartialUpdate(id *Identity, member *models.Member) Decision {
	return a.Update(id, member)
}

func (a Members) Destroy(id *Identity, member *models.Member) Decision {
	return a.Update(id, member)
}

// ----- Group -----

type Groups struct{ Store Store }

func (a Groups) List(id *Identity) Decision {
	// The handler filters the queryset down to the requester's groups.
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Groups) Retrieve(id *Identity, group *models.Group) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	ok, err := IsMember(a.Store, id, group.ID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only group members may view the group")
	}
	return Allow()
}

// Create is open to any authenticated member; the handler makes the
// creator an admin of the new group in the same transaction.
func (a Groups) Create(id *Identity, group *models.Group) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Groups) Update(id *Identity, group *models.Group) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	ok, err := IsGroupAdmin(a.Store, id, group.ID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only group admins may modify the group")
	}
	return Allow()
}

func (a Groups) PartialUpdate(id *Identity, group *models.Group) Decision {
	return a.Update(id, group)
}

func (a Groups) Destroy(id *Identity, group *models.Group) Decision {
	return a.Update(id, group)
}

// ----- GroupMembership -----

// MembershipCreate is the submitted payload for joining a group or
// adding another member to it. MemberID zero means "the requester".
type MembershipCreate struct {
	MemberID uint
	GroupID  uint
	Nickname string
}

// MembershipUpdate carries the fields a membership update may touch.
// Nil means "left alone".
type MembershipUpdate struct {
	Row      *models.BelongsTo
	IsAdmin  *bool
	Nickname *string
	MemberID *uint
	GroupID  *uint
}

type Memberships struct{ Store Store }

func (a Memberships) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Memberships) Retrieve(id *Identity, row *models.BelongsTo) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	ok, err := IsMember(a.Store, id, row.GroupID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only group members may view memberships")
	}
	return Allow()
}

// CreateMembership runs the two-phase check for a join/add request:
// structural validation first, then reference resolution, then the
// membership predicates against the resolved group. Naming a member
// other than the requester is a payload problem, not a permission one,
// so it surfaces as a validation failure.
func (a Memberships) CreateMembership(id *Identity, in MembershipCreate) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if in.GroupID == 0 {
		return ValidationFailed("group is required")
	}
	if _, err := a.Store.GroupByID(in.GroupID); err != nil {
		return storeFailure(err)
	}

	targetsSelf := in.MemberID == 0 || in.MemberID == id.MemberID
	if targetsSelf {
		return Allow()
	}

	admin, err := IsGroupAdmin(a.Store, id, in.GroupID)
	if err != nil {
		return storeFailure(err)
	}
	if !admin {
		return ValidationFailed("membership may only be created for the requesting member")
	}
	if in.Nickname != "" {
		return ValidationFailed("a nickname may not be set when adding another member")
	}
	if _, err := a.Store.MemberByID(in.MemberID); err != nil {
		return storeFailure(err)
	}
	return Allow()
}

func (a Memberships) Create(id *Identity, row *models.BelongsTo) Decision {
	return a.CreateMembership(id, MembershipCreate{
		MemberID: row.MemberID,
		GroupID:  row.GroupID,
		Nickname: row.Nickname,
	})
}

// UpdateMembership applies the field-scoped rules: only a group admin may
// flip isAdmin, only the row's own subject may change the nickname, and
// the member/group pair is immutable (delete and recreate instead).
func (a Memberships) UpdateMembership(id *Identity, in MembershipUpdate) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if in.MemberID != nil && *in.MemberID != in.Row.MemberID {
		return ValidationFailed("the member of a membership cannot be changed")
	}
	if in.GroupID != nil && *in.GroupID != in.Row.GroupID {
		return ValidationFailed("the group of a membership cannot be changed")
	}

	if in.IsAdmin != nil && *in.IsAdmin != in.Row.IsAdmin {
		admin, err := IsGroupAdmin(a.Store, id, in.Row.GroupID)
		if err != nil {
			return storeFailure(err)
		}
		if !admin {
			return Forbidden("only group admins may change admin status")
		}
	}
	if in.Nickname != nil && *in.Nickname != in.Row.Nickname {
		if in.Row.MemberID != id.MemberID {
			return Forbidden("only the membership's own member may change the nickname")
		}
	}
	return Allow()
}

func (a Memberships) Update(id *Identity, row *models.BelongsTo) Decision {
	return a.UpdateMembership(id, MembershipUpdate{Row: row})
}

func (a Memberships) PartialUpdate(id *Identity, row *models.BelongsTo) Decision {
	return a.Update(id, row)
}

// Destroy allows a group admin to remove anyone, and any member to
// remove their own row (leaving the group).
func (a Memberships) Destroy(id *Identity, row *models.BelongsTo) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if row.MemberID == id.MemberID {
		return Allow()
	}
	admin, err := IsGroupAdmin(a.Store, id, row.GroupID)
	if err != nil {
		return storeFailure(err)
	}
	if !admin {
		return Forbidden("only group admins may remove other members")
	}
	return Allow()
}

// ----- Route -----

// RouteCreate is the ownership part of a submitted route payload.
type RouteCreate struct {
	UserID  *uint
	GroupID *uint
}

type Routes struct{ Store Store }

func (a Routes) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Routes) Retrieve(id *Identity, route *models.Route) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	ok, err := RouteIsVisible(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("route is not visible to the requester")
	}
	return Allow()
}

// CreateRoute validates the owner XOR invariant, resolves the named
// owner, and checks the requester may create on its behalf.
func (a Routes) CreateRoute(id *Identity, in RouteCreate) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if (in.UserID == nil) == (in.GroupID == nil) {
		return ValidationFailed("exactly one of user and group must own the route")
	}
	if in.UserID != nil {
		if *in.UserID != id.MemberID {
			return ValidationFailed("a member route must be owned by the requesting member")
		}
		return Allow()
	}
	if _, err := a.Store.GroupByID(*in.GroupID); err != nil {
		return storeFailure(err)
	}
	ok, err := IsMember(a.Store, id, *in.GroupID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only group members may create routes for the group")
	}
	return Allow()
}

func (a Routes) Create(id *Identity, route *models.Route) Decision {
	return a.CreateRoute(id, RouteCreate{UserID: route.UserID, GroupID: route.GroupID})
}

func (a Routes) Update(id *Identity, route *models.Route) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	ok, err := RouteCanModify(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only the route's owner or owning group's members may modify it")
	}
	return Allow()
}

func (a Routes) PartialUpdate(id *Identity, route *models.Route) Decision {
	return a.Update(id, route)
}

func (a Routes) Destroy(id *Identity, route *models.Route) Decision {
	return a.Update(id, route)
}

// ----- RouteAttraction (IsWithin) -----

// RouteAttractions gates the ordered attraction entries of a route.
// Reads follow the parent route's visibility, writes its modify gate.
type RouteAttractions struct{ Store Store }

func (a RouteAttractions) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a RouteAttractions) parent(routeID uint) (*models.Route, Decision) {
	route, err := a.Store.RouteByID(routeID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return route, Allow()
}

func (a RouteAttractions) Retrieve(id *Identity, row *models.IsWithin) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	route, d := a.parent(row.RouteID)
	if !d.Allowed() {
		return d
	}
	ok, err := RouteIsVisible(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("route is not visible to the requester")
	}
	return Allow()
}

func (a RouteAttractions) write(id *Identity, routeID uint) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	route, d := a.parent(routeID)
	if !d.Allowed() {
		return d
	}
	ok, err := RouteCanModify(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("only the route's owner or owning group's members may modify its attractions")
	}
	return Allow()
}

func (a RouteAttractions) Create(id *Identity, row *models.IsWithin) Decision {
	if row.RouteID == 0 {
		if d, ok := requireAuth(id); !ok {
			return d
		}
		return ValidationFailed("route is required")
	}
	return a.write(id, row.RouteID)
}

func (a RouteAttractions) Update(id *Identity, row *models.IsWithin) Decision {
	return a.write(id, row.RouteID)
}

func (a RouteAttractions) PartialUpdate(id *Identity, row *models.IsWithin) Decision {
	return a.write(id, row.RouteID)
}

func (a RouteAttractions) Destroy(id *Identity, row *models.IsWithin) Decision {
	return a.write(id, row.RouteID)
}

// ----- Notebook -----

type Notebooks struct{ Store Store }

func (a Notebooks) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Notebooks) Retrieve(id *Identity, notebook *models.Notebook) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !IsOwner(id, notebook.MemberID) {
		return Forbidden("only the notebook's author may view it")
	}
	return Allow()
}

// Create forces the author to the requester; the handler never trusts a
// submitted member field. The referenced route must exist but need not
// be visible: journaling is private to the author.
func (a Notebooks) Create(id *Identity, notebook *models.Notebook) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if notebook.RouteID == 0 {
		return ValidationFailed("route is required")
	}
	if _, err := a.Store.RouteByID(notebook.RouteID); err != nil {
		return storeFailure(err)
	}
	return Allow()
}

func (a Notebooks) Update(id *Identity, notebook *models.Notebook) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !IsOwner(id, notebook.MemberID) {
		return Forbidden("only the notebook's author may modify it")
	}
	return Allow()
}

func (a Notebooks) PartialUpdate(id *Identity, notebook *models.Notebook) Decision {
	return a.Update(id, notebook)
}

func (a Notebooks) Destroy(id *Identity, notebook *models.Notebook) Decision {
	return a.Update(id, notebook)
}

// ----- RatingFlag -----

type Ratings struct{ Store Store }

func (a Ratings) List(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	return Allow()
}

func (a Ratings) Retrieve(id *Identity, rating *models.RatingFlag) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !rating.TargetsRoute() {
		// Attraction-scoped ratings are as public as attractions are.
		return Allow()
	}
	route, err := a.Store.RouteByID(*rating.RouteID)
	if err != nil {
		return storeFailure(err)
	}
	ok, err := RouteIsVisible(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("the rated route is not visible to the requester")
	}
	return Allow()
}

// Create validates the target XOR invariant, then requires visibility of
// the rated route; attraction ratings are open to any authenticated member.
func (a Ratings) Create(id *Identity, rating *models.RatingFlag) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if (rating.RouteID == nil) == (rating.AttractionID == nil) {
		return ValidationFailed("exactly one of route and attraction must be rated")
	}
	if rating.Rating == nil && rating.FlagTypeID == nil {
		return ValidationFailed("a rating value or a flag type is required")
	}
	if rating.Rating != nil && (*rating.Rating < 1 || *rating.Rating > 5) {
		return ValidationFailed("rating must be between 1 and 5")
	}
	if !rating.TargetsRoute() {
		return Allow()
	}
	route, err := a.Store.RouteByID(*rating.RouteID)
	if err != nil {
		return storeFailure(err)
	}
	ok, err := RouteIsVisible(a.Store, id, route)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return Forbidden("the rated route is not visible to the requester")
	}
	return Allow()
}

func (a Ratings) Update(id *Identity, rating *models.RatingFlag) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !IsOwner(id, rating.MemberID) {
		return Forbidden("only the rating's author may modify it")
	}
	return Allow()
}

func (a Ratings) PartialUpdate(id *Identity, rating *models.RatingFlag) Decision {
	return a.Update(id, rating)
}

func (a Ratings) Destroy(id *Identity, rating *models.RatingFlag) Decision {
	return a.Update(id, rating)
}

// ----- Attraction -----

// Attractions are globally readable, even anonymously; writes are
// reserved for site admins.
type Attractions struct{ Store Store }

func (a Attractions) List(id *Identity) Decision { return Allow() }

func (a Attractions) Retrieve(id *Identity, attraction *models.Attraction) Decision {
	return Allow()
}

func (a Attractions) write(id *Identity) Decision {
	if d, ok := requireAuth(id); !ok {
		return d
	}
	if !id.IsAdmin() {
		return Forbidden("only admins may modify attractions")
	}
	return Allow()
}

func (a Attractions) Create(id *Identity, attraction *models.Attraction) Decision {
	return a.write(id)
}

func (a Attractions) Update(id *Identity, attraction *models.Attraction) Decision {
	return a.write(id)
}

func (a Attractions) PartialUpdate(id *Identity, attraction *models.Attraction) Decision {
	return a.write(id)
}

func (a Attractions) Destroy(id *Identity, attraction *models.Attraction) Decision {
	return a.write(id)
}
