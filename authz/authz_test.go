package authz

import (
	"testing"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

// fakeStore is an in-memory Store for exercising the decision layer
// without a database.
type fakeStore struct {
	members     map[uint]*models.Member
	groups      map[uint]*models.Group
	routes      map[uint]*models.Route
	memberships map[[2]uint]*models.BelongsTo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:     map[uint]*models.Member{},
		groups:      map[uint]*models.Group{},
		routes:      map[uint]*models.Route{},
		memberships: map[[2]uint]*models.BelongsTo{},
	}
}

func (s *fakeStore) MemberByID(id uint) (*models.Member, error) {
	if m, ok := s.members[id]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GroupByID(id uint) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) RouteByID(id uint) (*models.Route, error) {
	if r, ok := s.routes[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Membership(memberID, groupID uint) (*models.BelongsTo, error) {
	return s.memberships[[2]uint{memberID, groupID}], nil
}

func (s *fakeStore) addMember(memberID, userID uint) *Identity {
	s.members[memberID] = &models.Member{UserID: userID}
	s.members[memberID].ID = memberID
	return &Identity{UserID: userID, MemberID: memberID, Role: "user"}
}

func (s *fakeStore) addGroup(groupID uint) {
	g := &models.Group{}
	g.ID = groupID
	s.groups[groupID] = g
}

func (s *fakeStore) join(memberID, groupID uint, isAdmin bool) *models.BelongsTo {
	row := &models.BelongsTo{ID: uint(len(s.memberships) + 1), MemberID: memberID, GroupID: groupID, IsAdmin: isAdmin}
	s.memberships[[2]uint{memberID, groupID}] = row
	return row
}

func (s *fakeStore) addRoute(routeID uint, public bool, ownerMember, ownerGroup *uint) *models.Route {
	r := &models.Route{Public: public, UserID: ownerMember, GroupID: ownerGroup}
	r.ID = routeID
	s.routes[routeID] = r
	return r
}

func uintPtr(v uint) *uint { return &v }
func boolPtr(v bool) *bool { return &v }
func strPtr(v string) *string { return &v }

func TestRouteVisibilityMatrix(t *testing.T) {
	s := newFakeStore()
	owner := s.addMember(1, 11)
	groupie := s.addMember(2, 12)
	stranger := s.addMember(3, 13)
	s.addGroup(20)
	s.join(owner.MemberID, 20, true)
	s.join(groupie.MemberID, 20, false)

	publicRoute := s.addRoute(100, true, uintPtr(owner.MemberID), nil)
	privateMemberRoute := s.addRoute(101, false, uintPtr(owner.MemberID), nil)
	privateGroupRoute := s.addRoute(102, false, nil, uintPtr(20))

	cases := []struct {
		name    string
		id      *Identity
		route   *models.Route
		visible bool
	}{
		{"public visible to any authenticated user", stranger, publicRoute, true},
		{"public invisible to anonymous", nil, publicRoute, false},
		{"private member route visible to owner", owner, privateMemberRoute, true},
		{"private member route hidden from others", stranger, privateMemberRoute, false},
		{"private group route visible to group member", groupie, privateGroupRoute, true},
		{"private group route hidden from non-members", stranger, privateGroupRoute, false},
		{"private route hidden from anonymous", nil, privateMemberRoute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RouteIsVisible(s, tc.id, tc.route)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.visible {
				t.Fatalf("RouteIsVisible = %v, want %v", got, tc.visible)
			}
		})
	}
}

func TestPublicDoesNotImplyWriteAccess(t *testing.T) {
	s := newFakeStore()
	owner := s.addMember(1, 11)
	stranger := s.addMember(2, 12)
	route := s.addRoute(100, true, uintPtr(owner.MemberID), nil)

	ok, err := RouteCanModify(s, stranger, route)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("a public flag must not grant write access")
	}
	ok, _ = RouteCanModify(s, owner, route)
	if !ok {
		t.Fatal("the owner must be able to modify their route")
	}
}

func TestMissingMembershipIsFalseNotError(t *testing.T) {
	s := newFakeStore()
	id := s.addMember(1, 11)
	s.addGroup(20)

	ok, err := IsMember(s, id, 20)
	if err != nil {
		t.Fatalf("absent membership must not be an error, got %v", err)
	}
	if ok {
		t.Fatal("absent membership must resolve to false")
	}
	ok, err = IsGroupAdmin(s, id, 20)
	if err != nil || ok {
		t.Fatalf("absent membership admin check = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRouteCreateOwnerXOR(t *testing.T) {
	s := newFakeStore()
	id := s.addMember(1, 11)
	s.addGroup(20)
	s.join(id.MemberID, 20, false)
	rules := Routes{Store: s}

	both := rules.CreateRoute(id, RouteCreate{UserID: uintPtr(1), GroupID: uintPtr(20)})
	if both.Code != CodeValidationFailed {
		t.Fatalf("both owners set: got %v, want validation failure", both.Code)
	}
	neither := rules.CreateRoute(id, RouteCreate{})
	if neither.Code != CodeValidationFailed {
		t.Fatalf("no owner set: got %v, want validation failure", neither.Code)
	}
	self := rules.CreateRoute(id, RouteCreate{UserID: uintPtr(id.MemberID)})
	if !self.Allowed() {
		t.Fatalf("self-owned route rejected: %v", self)
	}
	other := rules.CreateRoute(id, RouteCreate{UserID: uintPtr(99)})
	if other.Code != CodeValidationFailed {
		t.Fatalf("route owned by another member: got %v, want validation failure", other.Code)
	}
	group := rules.CreateRoute(id, RouteCreate{GroupID: uintPtr(20)})
	if !group.Allowed() {
		t.Fatalf("group route by group member rejected: %v", group)
	}
	missing := rules.CreateRoute(id, RouteCreate{GroupID: uintPtr(999)})
	if missing.Code != CodeNotFound {
		t.Fatalf("missing group: got %v, want not found", missing.Code)
	}
}

func TestRouteCreateForGroupRequiresMembership(t *testing.T) {
	s := newFakeStore()
	outsider := s.addMember(1, 11)
	s.addGroup(20)
	rules := Routes{Store: s}

	d := rules.CreateRoute(outsider, RouteCreate{GroupID: uintPtr(20)})
	if d.Code != CodeForbidden {
		t.Fatalf("non-member creating group route: got %v, want forbidden", d.Code)
	}
}

func TestMembershipCreateRejectsSmuggledMember(t *testing.T) {
	s := newFakeStore()
	admin := s.addMember(1, 11)
	regular := s.addMember(2, 12)
	target := s.addMember(3, 13)
	s.addGroup(20)
	s.join(admin.MemberID, 20, true)
	s.join(regular.MemberID, 20, false)
	rules := Memberships{Store: s}

	// Non-admin naming someone else is a payload problem: 400, not 403.
	d := rules.CreateMembership(regular, MembershipCreate{MemberID: target.MemberID, GroupID: 20})
	if d.Code != CodeValidationFailed {
		t.Fatalf("smuggled member by non-admin: got %v, want validation failure", d.Code)
	}

	// Admin adding someone else is fine, but not with a nickname.
	d = rules.CreateMembership(admin, MembershipCreate{MemberID: target.MemberID, GroupID: 20})
	if !d.Allowed() {
		t.Fatalf("admin add rejected: %v", d)
	}
	d = rules.CreateMembership(admin, MembershipCreate{MemberID: target.MemberID, GroupID: 20, Nickname: "newbie"})
	if d.Code != CodeValidationFailed {
		t.Fatalf("admin add with nickname: got %v, want validation failure", d.Code)
	}

	// Self-join, implicit and explicit, is allowed.
	d = rules.CreateMembership(target, MembershipCreate{GroupID: 20})
	if !d.Allowed() {
		t.Fatalf("implicit self-join rejected: %v", d)
	}
	d = rules.CreateMembership(target, MembershipCreate{MemberID: target.MemberID, GroupID: 20, Nickname: "me"})
	if !d.Allowed() {
		t.Fatalf("explicit self-join rejected: %v", d)
	}

	// A missing group is a 404, never a silent deny.
	d = rules.CreateMembership(target, MembershipCreate{GroupID: 999})
	if d.Code != CodeNotFound {
		t.Fatalf("missing group: got %v, want not found", d.Code)
	}
}

func TestMembershipUpdateFieldScoping(t *testing.T) {
	s := newFakeStore()
	admin := s.addMember(1, 11)
	subject := s.addMember(2, 12)
	other := s.addMember(3, 13)
	s.addGroup(20)
	s.join(admin.MemberID, 20, true)
	subjectRow := s.join(subject.MemberID, 20, false)
	s.join(other.MemberID, 20, false)
	rules := Memberships{Store: s}

	// Only an admin may flip isAdmin.
	d := rules.UpdateMembership(subject, MembershipUpdate{Row: subjectRow, IsAdmin: boolPtr(true)})
	if d.Code != CodeForbidden {
		t.Fatalf("non-admin promoting self: got %v, want forbidden", d.Code)
	}
	d = rules.UpdateMembership(admin, MembershipUpdate{Row: subjectRow, IsAdmin: boolPtr(true)})
	if !d.Allowed() {
		t.Fatalf("admin promotion rejected: %v", d)
	}

	// Only the row's own subject may change the nickname.
	d = rules.UpdateMembership(admin, MembershipUpdate{Row: subjectRow, Nickname: strPtr("sneaky")})
	if d.Code != CodeForbidden {
		t.Fatalf("admin renaming someone else: got %v, want forbidden", d.Code)
	}
	d = rules.UpdateMembership(subject, MembershipUpdate{Row: subjectRow, Nickname: strPtr("wanderer")})
	if !d.Allowed() {
		t.Fatalf("subject nickname change rejected: %v", d)
	}

	// The pair is immutable, even for admins.
	d = rules.UpdateMembership(admin, MembershipUpdate{Row: subjectRow, GroupID: uintPtr(21)})
	if d.Code != CodeValidationFailed {
		t.Fatalf("group reassignment: got %v, want validation failure", d.Code)
	}
	d = rules.UpdateMembership(admin, MembershipUpdate{Row: subjectRow, MemberID: uintPtr(other.MemberID)})
	if d.Code != CodeValidationFailed {
		t.Fatalf("member reassignment: got %v, want validation failure", d.Code)
	}
}

func TestMembershipDestroySelfLeaveAndAdminRemove(t *testing.T) {
	s := newFakeStore()
	admin := s.addMember(1, 11)
	subject := s.addMember(2, 12)
	other := s.addMember(3, 13)
	s.addGroup(20)
	s.join(admin.MemberID, 20, true)
	subjectRow := s.join(subject.MemberID, 20, false)
	s.join(other.MemberID, 20, false)
	rules := Memberships{Store: s}

	if d := rules.Destroy(subject, subjectRow); !d.Allowed() {
		t.Fatalf("self-leave rejected: %v", d)
	}
	if d := rules.Destroy(admin, subjectRow); !d.Allowed() {
		t.Fatalf("admin removal rejected: %v", d)
	}
	if d := rules.Destroy(other, subjectRow); d.Code != CodeForbidden {
		t.Fatalf("peer removal: got %v, want forbidden", d.Code)
	}
}

func TestGroupAdminGatesGroupWrites(t *testing.T) {
	s := newFakeStore()
	admin := s.addMember(1, 11)
	regular := s.addMember(2, 12)
	stranger := s.addMember(3, 13)
	s.addGroup(20)
	s.join(admin.MemberID, 20, true)
	s.join(regular.MemberID, 20, false)
	rules := Groups{Store: s}
	group, _ := s.GroupByID(20)

	if d := rules.Retrieve(regular, group); !d.Allowed() {
		t.Fatalf("member retrieve rejected: %v", d)
	}
	if d := rules.Retrieve(stranger, group); d.Code != CodeForbidden {
		t.Fatalf("stranger retrieve: got %v, want forbidden", d.Code)
	}
	if d := rules.Update(regular, group); d.Code != CodeForbidden {
		t.Fatalf("non-admin update: got %v, want forbidden", d.Code)
	}
	if d := rules.Destroy(admin, group); !d.Allowed() {
		t.Fatalf("admin destroy rejected: %v", d)
	}
}

// A administers group 2, B is a plain member, R
// is a private route owned by group 2. A may delete R's attraction
// entries; so may B (any group member can modify group content), but a
// non-member may not, and an anonymous retrieve is an auth problem, not
// a 404.
func TestGroupRouteChildEntryScenario(t *testing.T) {
	s := newFakeStore()
	admin := s.addMember(1, 11)
	member := s.addMember(2, 12)
	outsider := s.addMember(3, 13)
	s.addGroup(2)
	s.join(admin.MemberID, 2, true)
	s.join(member.MemberID, 2, false)
	route := s.addRoute(100, false, nil, uintPtr(2))
	entry := &models.IsWithin{ID: 1, RouteID: route.ID, AttractionID: 5, OrderNumber: 1}
	rules := RouteAttractions{Store: s}

	if d := rules.Destroy(admin, entry); !d.Allowed() {
		t.Fatalf("group admin delete rejected: %v", d)
	}
	if d := rules.Destroy(member, entry); !d.Allowed() {
		t.Fatalf("group member delete rejected: %v", d)
	}
	if d := rules.Destroy(outsider, entry); d.Code != CodeForbidden {
		t.Fatalf("outsider delete: got %v, want forbidden", d.Code)
	}

	routeRules := Routes{Store: s}
	if d := routeRules.Retrieve(nil, route); d.Code != CodeUnauthenticated {
		t.Fatalf("anonymous retrieve of private route: got %v, want unauthenticated", d.Code)
	}
	if d := routeRules.Retrieve(outsider, route); d.Code != CodeForbidden {
		t.Fatalf("outsider retrieve of private route: got %v, want forbidden", d.Code)
	}
}

func TestRatingCreateRules(t *testing.T) {
	s := newFakeStore()
	owner := s.addMember(1, 11)
	stranger := s.addMember(2, 12)
	privateRoute := s.addRoute(100, false, uintPtr(owner.MemberID), nil)
	rules := Ratings{Store: s}
	stars := 4

	both := rules.Create(stranger, &models.RatingFlag{RouteID: uintPtr(100), AttractionID: uintPtr(5), Rating: &stars})
	if both.Code != CodeValidationFailed {
		t.Fatalf("both targets: got %v, want validation failure", both.Code)
	}
	neither := rules.Create(stranger, &models.RatingFlag{Rating: &stars})
	if neither.Code != CodeValidationFailed {
		t.Fatalf("no target: got %v, want validation failure", neither.Code)
	}
	attractionRating := rules.Create(stranger, &models.RatingFlag{AttractionID: uintPtr(5), Rating: &stars})
	if !attractionRating.Allowed() {
		t.Fatalf("attraction rating rejected: %v", attractionRating)
	}
	hiddenRoute := rules.Create(stranger, &models.RatingFlag{RouteID: uintPtr(privateRoute.ID), Rating: &stars})
	if hiddenRoute.Code != CodeForbidden {
		t.Fatalf("rating an invisible route: got %v, want forbidden", hiddenRoute.Code)
	}
	ownRoute := rules.Create(owner, &models.RatingFlag{RouteID: uintPtr(privateRoute.ID), Rating: &stars})
	if !ownRoute.Allowed() {
		t.Fatalf("owner rating own route rejected: %v", ownRoute)
	}
	missing := rules.Create(owner, &models.RatingFlag{RouteID: uintPtr(999), Rating: &stars})
	if missing.Code != CodeNotFound {
		t.Fatalf("rating a missing route: got %v, want not found", missing.Code)
	}
	outOfRange := 9
	bad := rules.Create(owner, &models.RatingFlag{RouteID: uintPtr(100), Rating: &outOfRange})
	if bad.Code != CodeValidationFailed {
		t.Fatalf("out-of-range rating: got %v, want validation failure", bad.Code)
	}
}

func TestRatingWritesAreAuthorOnly(t *testing.T) {
	s := newFakeStore()
	author := s.addMember(1, 11)
	other := s.addMember(2, 12)
	stars := 3
	row := &models.RatingFlag{ID: 1, MemberID: author.MemberID, AttractionID: uintPtr(5), Rating: &stars}
	rules := Ratings{Store: s}

	if d := rules.Update(author, row); !d.Allowed() {
		t.Fatalf("author update rejected: %v", d)
	}
	if d := rules.Destroy(other, row); d.Code != CodeForbidden {
		t.Fatalf("non-author delete: got %v, want forbidden", d.Code)
	}
}

func TestNotebookIsAuthorScoped(t *testing.T) {
	s := newFakeStore()
	author := s.addMember(1, 11)
	other := s.addMember(2, 12)
	s.addRoute(100, false, uintPtr(other.MemberID), nil)
	notebook := &models.Notebook{RouteID: 100, MemberID: author.MemberID}
	rules := Notebooks{Store: s}

	// Journaling a route the author cannot even see is fine; the
	// notebook itself stays private to its author.
	if d := rules.Create(author, notebook); !d.Allowed() {
		t.Fatalf("notebook create rejected: %v", d)
	}
	if d := rules.Retrieve(other, notebook); d.Code != CodeForbidden {
		t.Fatalf("non-author retrieve: got %v, want forbidden", d.Code)
	}
	if d := rules.Destroy(author, notebook); !d.Allowed() {
		t.Fatalf("author destroy rejected: %v", d)
	}
	missing := rules.Create(author, &models.Notebook{RouteID: 999, MemberID: author.MemberID})
	if missing.Code != CodeNotFound {
		t.Fatalf("notebook for missing route: got %v, want not found", missing.Code)
	}
}

func TestAttractionWritesAreAdminOnly(t *testing.T) {
	s := newFakeStore()
	regular := s.addMember(1, 11)
	admin := &Identity{UserID: 99, MemberID: 9, Role: "admin"}
	rules := Attractions{Store: s}
	attraction := &models.Attraction{}

	if d := rules.Retrieve(nil, attraction); !d.Allowed() {
		t.Fatalf("anonymous attraction read rejected: %v", d)
	}
	if d := rules.Create(regular, attraction); d.Code != CodeForbidden {
		t.Fatalf("regular user attraction create: got %v, want forbidden", d.Code)
	}
	if d := rules.Create(admin, attraction); !d.Allowed() {
		t.Fatalf("admin attraction create rejected: %v", d)
	}
	if d := rules.Create(nil, attraction); d.Code != CodeUnauthenticated {
		t.Fatalf("anonymous attraction create: got %v, want unauthenticated", d.Code)
	}
}

func TestMemberWritesAreSelfOnly(t *testing.T) {
	s := newFakeStore()
	self := s.addMember(1, 11)
	other := s.addMember(2, 12)
	selfProfile, _ := s.MemberByID(1)
	rules := Members{Store: s}

	if d := rules.Update(self, selfProfile); !d.Allowed() {
		t.Fatalf("self update rejected: %v", d)
	}
	if d := rules.Update(other, selfProfile); d.Code != CodeForbidden {
		t.Fatalf("other update: got %v, want forbidden", d.Code)
	}
	if d := rules.Create(nil, &models.Member{}); !d.Allowed() {
		t.Fatalf("registration must be open to anonymous requesters: %v", d)
	}
}

func TestDecideDispatch(t *testing.T) {
	s := newFakeStore()
	id := s.addMember(1, 11)
	profile, _ := s.MemberByID(1)
	rules := Members{Store: s}

	if d := Decide[*models.Member](rules, ActionRetrieve, id, profile); !d.Allowed() {
		t.Fatalf("dispatch retrieve rejected: %v", d)
	}
	if d := Decide[*models.Member](rules, ActionDestroy, nil, profile); d.Code != CodeUnauthenticated {
		t.Fatalf("dispatch destroy anonymous: got %v, want unauthenticated", d.Code)
	}
}
