package routes

import (
	"bytes"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

// setupTestDB swaps the package-level DB for an in-memory sqlite one.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey,
// matching the translated errors the handlers branch on.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Group{},
		&models.BelongsTo{},
		&models.Route{},
		&models.Attraction{},
		&models.IsWithin{},
		&models.Status{},
		&models.Notebook{},
		&models.FlagType{},
		&models.RatingFlag{},
		&models.Tag{},
		&models.IsTagged{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	prev := storage.DB
	storage.DB = db
	t.Cleanup(func() { storage.DB = prev })
	return db
}

// seedMember creates a user plus its member profile and returns the member.
func seedMember(t *testing.T, db *gorm.DB, username, email string) models.Member {
	t.Helper()
	user := models.User{Username: username, Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	member := models.Member{UserID: user.ID}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seeding member for %s: %v", username, err)
	}
	member.User = user
	return member
}

// buildAPIApp wires the handler parties under test behind the real
// access-token verifier.
func buildAPIApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	member := app.Party("/api/member", accessTokenVerifierMiddleware)
	{
		member.Patch("/{id:uint}", UpdateMember)
	}

	group := app.Party("/api/group", accessTokenVerifierMiddleware)
	{
		group.Post("/", CreateGroup)
		group.Get("/{id:uint}", GetGroup)
	}

	attraction := app.Party("/api/attraction")
	{
		attraction.Get("/{id:uint}", GetAttraction)
		attraction.Post("/{id:uint}/tags", accessTokenVerifierMiddleware, TagAttraction)
		attraction.Delete("/{id:uint}/tags/{tagID:uint}", accessTokenVerifierMiddleware, UntagAttraction)
	}

	notebook := app.Party("/api/notebook", accessTokenVerifierMiddleware)
	{
		notebook.Post("/", CreateNotebook)
		notebook.Patch("/{id:uint}", UpdateNotebook)
	}

	return app
}

func newTestApp(t *testing.T) *iris.Application {
	t.Helper()
	app := buildAPIApp()
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}
	return app
}

func itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func signMemberToken(userID uint) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: userID, Role: "user"})
	return string(token)
}

func doJSON(app *iris.Application, method, target, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("{}")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}
