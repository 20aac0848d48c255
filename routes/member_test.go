package routes

import (
	"net/http"
	"testing"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

func TestUpdateMemberEmailNormalizationAndConflict(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)

	first := seedMember(t, db, "ana", "ana@example.com")
	seedMember(t, db, "bob", "bob@example.com")

	// A taken email, in any casing, is a conflict rather than a 500.
	resp := doJSON(app, http.MethodPatch, "/api/member/"+itoa(first.ID),
		signMemberToken(first.UserID), `{"email":"BOB@EXAMPLE.COM"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d: %s", resp.Code, resp.Body.String())
	}

	// A fresh email is stored lowercased.
	resp = doJSON(app, http.MethodPatch, "/api/member/"+itoa(first.ID),
		signMemberToken(first.UserID), `{"email":"Ana.New@Example.COM"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 updating email, got %d: %s", resp.Code, resp.Body.String())
	}

	var user models.User
	if err := db.First(&user, first.UserID).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Email != "ana.new@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
}
