package routes

import (
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
)

func seedNotebookFixtures(t *testing.T, db *gorm.DB) (models.Member, models.Route, models.Status) {
	t.Helper()
	storage.SeedLookupTables(db)

	member := seedMember(t, db, "ana", "ana@example.com")
	memberID := member.ID
	route := models.Route{Title: "Coastal walk", UserID: &memberID}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("seeding route: %v", err)
	}

	var completed models.Status
	if err := db.Where("name = ?", models.StatusCompleted).First(&completed).Error; err != nil {
		t.Fatalf("loading completed status: %v", err)
	}
	return member, route, completed
}

func TestCreateNotebookLeavesDatesUnset(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)
	member, _, _ := seedNotebookFixtures(t, db)

	resp := doJSON(app, http.MethodPost, "/api/notebook",
		signMemberToken(member.UserID), `{"route":1,"title":"day one"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating notebook, got %d: %s", resp.Code, resp.Body.String())
	}

	var notebook models.Notebook
	if err := db.First(&notebook).Error; err != nil {
		t.Fatalf("loading notebook: %v", err)
	}
	if notebook.DateStarted != nil {
		t.Fatalf("creation must not stamp dateStarted, got %v", notebook.DateStarted)
	}
	if notebook.DateCompleted != nil {
		t.Fatalf("creation must not stamp dateCompleted, got %v", notebook.DateCompleted)
	}
}

func TestCreateNotebookCompletedStampsCompletionOnly(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)
	member, _, completed := seedNotebookFixtures(t, db)

	resp := doJSON(app, http.MethodPost, "/api/notebook",
		signMemberToken(member.UserID),
		`{"route":1,"status":`+itoa(completed.ID)+`}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var notebook models.Notebook
	if err := db.First(&notebook).Error; err != nil {
		t.Fatalf("loading notebook: %v", err)
	}
	if notebook.StatusID == nil || *notebook.StatusID != completed.ID {
		t.Fatalf("expected completed status persisted, got %v", notebook.StatusID)
	}
	if notebook.DateCompleted == nil {
		t.Fatal("entering completed must stamp dateCompleted")
	}
	if notebook.DateStarted != nil {
		t.Fatalf("dateStarted must stay unset, got %v", notebook.DateStarted)
	}
}

func TestUpdateNotebookClearingStatusPersists(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t)
	member, route, completed := seedNotebookFixtures(t, db)

	finished := time.Now().AddDate(0, 0, -2)
	started := time.Now().AddDate(0, 0, -7)
	notebook := models.Notebook{
		RouteID:       route.ID,
		MemberID:      member.ID,
		StatusID:      &completed.ID,
		DateStarted:   &started,
		DateCompleted: &finished,
	}
	if err := db.Create(&notebook).Error; err != nil {
		t.Fatalf("seeding notebook: %v", err)
	}

	resp := doJSON(app, http.MethodPatch, "/api/notebook/1",
		signMemberToken(member.UserID), `{"status":0}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 clearing status, got %d: %s", resp.Code, resp.Body.String())
	}

	var reloaded models.Notebook
	if err := db.First(&reloaded, notebook.ID).Error; err != nil {
		t.Fatalf("reloading notebook: %v", err)
	}
	if reloaded.StatusID != nil {
		t.Fatalf("cleared status must persist as NULL, got %v", *reloaded.StatusID)
	}
	if reloaded.DateCompleted != nil {
		t.Fatalf("leaving completed must clear dateCompleted, got %v", reloaded.DateCompleted)
	}
	if reloaded.DateStarted == nil || reloaded.DateStarted.Before(started.Add(time.Hour)) {
		t.Fatalf("leaving completed must reset dateStarted to today, got %v", reloaded.DateStarted)
	}
}
