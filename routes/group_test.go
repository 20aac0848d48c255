package routes

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

func TestCreateGroupCreatorBecomesAdmin(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)

	creator := seedMember(t, db, "ana", "ana@example.com")

	resp := doJSON(app, http.MethodPost, "/api/group",
		signMemberToken(creator.UserID), `{"name":"hikers","nickname":"lead"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating group, got %d: %s", resp.Code, resp.Body.String())
	}

	var row models.BelongsTo
	err := db.Where("member_id = ?", creator.ID).First(&row).Error
	if err != nil {
		t.Fatalf("expected a membership row for the creator: %v", err)
	}
	if !row.IsAdmin {
		t.Fatal("creator's membership row must carry isAdmin")
	}
	if row.Nickname != "lead" {
		t.Fatalf("expected creator nickname kept, got %q", row.Nickname)
	}

	var group models.Group
	if err := db.First(&group, row.GroupID).Error; err != nil {
		t.Fatalf("membership row points at a missing group: %v", err)
	}
	if group.Name != "hikers" {
		t.Fatalf("expected group name kept, got %q", group.Name)
	}
}

func TestGroupViewHidesCoMemberContactFields(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)

	creator := seedMember(t, db, "ana", "ana@example.com")
	other := seedMember(t, db, "bob", "bob-private@example.com")

	group := models.Group{Name: "hikers"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seeding group: %v", err)
	}
	memberships := []models.BelongsTo{
		{MemberID: creator.ID, GroupID: group.ID, IsAdmin: true},
		{MemberID: other.ID, GroupID: group.ID},
	}
	for i := range memberships {
		if err := db.Create(&memberships[i]).Error; err != nil {
			t.Fatalf("seeding membership: %v", err)
		}
	}

	resp := doJSON(app, http.MethodGet, "/api/group/1", signMemberToken(creator.UserID), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching group, got %d: %s", resp.Code, resp.Body.String())
	}

	body := resp.Body.String()
	if !strings.Contains(body, "bob") {
		t.Fatalf("expected co-member username in group view: %s", body)
	}
	if strings.Contains(body, "bob-private@example.com") {
		t.Fatalf("co-member email must not appear in group view: %s", body)
	}
}
