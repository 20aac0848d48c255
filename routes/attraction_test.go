package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kataras/iris/v12"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

type attractionResponse struct {
	Attraction struct {
		ID   uint `json:"ID"`
		Tags []struct {
			ID    uint `json:"id"`
			TagID uint `json:"tag"`
		} `json:"tags"`
	} `json:"attraction"`
}

func tagCount(t *testing.T, app *iris.Application, attractionID string) int {
	t.Helper()
	resp := doJSON(app, http.MethodGet, "/api/attraction/"+attractionID, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("fetching attraction: got %d", resp.Code)
	}
	var out attractionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding attraction: %v", err)
	}
	return len(out.Attraction.Tags)
}

func TestAttractionTagLifecycle(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)

	first := seedMember(t, db, "ana", "ana@example.com")
	second := seedMember(t, db, "bob", "bob@example.com")

	attraction := models.Attraction{Name: "Old Town"}
	if err := db.Create(&attraction).Error; err != nil {
		t.Fatalf("seeding attraction: %v", err)
	}
	tag := models.Tag{Name: "historic"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("seeding tag: %v", err)
	}

	// First tagging succeeds.
	resp := doJSON(app, http.MethodPost, "/api/attraction/1/tags",
		signMemberToken(first.UserID), `{"tag":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first tag, got %d: %s", resp.Code, resp.Body.String())
	}

	// A second identity tagging the same pair hits the unique index.
	resp = doJSON(app, http.MethodPost, "/api/attraction/1/tags",
		signMemberToken(second.UserID), `{"tag":1}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate tag, got %d: %s", resp.Code, resp.Body.String())
	}
	if n := tagCount(t, app, "1"); n != 1 {
		t.Fatalf("expected exactly one tag after duplicate attempt, got %d", n)
	}

	// Untagging removes the pair.
	resp = doJSON(app, http.MethodDelete, "/api/attraction/1/tags/1",
		signMemberToken(first.UserID), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on untag, got %d: %s", resp.Code, resp.Body.String())
	}
	if n := tagCount(t, app, "1"); n != 0 {
		t.Fatalf("expected no tags after untag, got %d", n)
	}

	// The pair is immediately re-taggable.
	resp = doJSON(app, http.MethodPost, "/api/attraction/1/tags",
		signMemberToken(second.UserID), `{"tag":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 re-tagging after removal, got %d: %s", resp.Code, resp.Body.String())
	}
}
