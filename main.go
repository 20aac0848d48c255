package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/routes"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/logout", accessTokenVerifierMiddleware, routes.Logout)
		user.Patch("/password", accessTokenVerifierMiddleware, routes.ChangePassword)
	}

	member := app.Party("/api/member", accessTokenVerifierMiddleware)
	{
		member.Get("/", routes.ListMembers)
		member.Get("/{id:uint}", routes.GetMember)
		member.Patch("/{id:uint}", routes.UpdateMember)
		member.Delete("/{id:uint}", routes.DeleteMember)
		member.Patch("/{id:uint}/routes/saved", routes.AlterSavedRoutes)
	}

	group := app.Party("/api/group", accessTokenVerifierMiddleware)
	{
		group.Post("/", routes.CreateGroup)
		group.Get("/", routes.ListMyGroups)
		group.Get("/{id:uint}", routes.GetGroup)
		group.Patch("/{id:uint}", routes.UpdateGroup)
		group.Delete("/{id:uint}", routes.DeleteGroup)
	}

	belongsTo := app.Party("/api/belongsTo", accessTokenVerifierMiddleware)
	{
		belongsTo.Post("/", routes.CreateMembership)
		belongsTo.Get("/{id:uint}", routes.GetMembership)
		belongsTo.Patch("/{id:uint}", routes.UpdateMembership)
		belongsTo.Delete("/{id:uint}", routes.DeleteMembership)
		belongsTo.Get("/getMembers/{id:uint}", routes.GetGroupMembers)
		belongsTo.Get("/getGroups/{id:uint}", routes.GetMemberGroups)
	}

	route := app.Party("/api/route", accessTokenVerifierMiddleware)
	{
		route.Post("/", routes.CreateRoute)
		route.Get("/", routes.ListRoutes)
		route.Get("/{id:uint}", routes.GetRoute)
		route.Patch("/{id:uint}", routes.UpdateRoute)
		route.Delete("/{id:uint}", routes.DeleteRoute)
		route.Get("/{id:uint}/attractions", routes.ListRouteAttractions)
		route.Get("/{id:uint}/ratings", routes.ListRouteRatings)
	}

	isWithin := app.Party("/api/isWithin", accessTokenVerifierMiddleware)
	{
		isWithin.Post("/", routes.AddRouteAttraction)
		isWithin.Patch("/{id:uint}", routes.UpdateRouteAttraction)
		isWithin.Delete("/{id:uint}", routes.RemoveRouteAttraction)
	}

	attraction := app.Party("/api/attraction")
	{
		attraction.Get("/", routes.ListAttractions)
		attraction.Get("/{id:uint}", routes.GetAttraction)
		attraction.Get("/{id:uint}/ratings", routes.ListAttractionRatings)
		attraction.Post("/{id:uint}/tags", accessTokenVerifierMiddleware, routes.TagAttraction)
		attraction.Delete("/{id:uint}/tags/{tagID:uint}", accessTokenVerifierMiddleware, routes.UntagAttraction)
	}

	tag := app.Party("/api/tag")
	{
		tag.Get("/", routes.ListTags)
		tag.Post("/", accessTokenVerifierMiddleware, routes.CreateTag)
	}

	notebook := app.Party("/api/notebook", accessTokenVerifierMiddleware)
	{
		notebook.Post("/", routes.CreateNotebook)
		notebook.Get("/", routes.ListMyNotebooks)
		notebook.Get("/{id:uint}", routes.GetNotebook)
		notebook.Patch("/{id:uint}", routes.UpdateNotebook)
		notebook.Delete("/{id:uint}", routes.DeleteNotebook)
	}

	app.Get("/api/status", routes.ListStatuses)

	rating := app.Party("/api/rating", accessTokenVerifierMiddleware)
	{
		rating.Post("/", routes.CreateRating)
		rating.Patch("/{id:uint}", routes.UpdateRating)
		rating.Delete("/{id:uint}", routes.DeleteRating)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Post("/attraction", routes.CreateAttraction)
		admin.Patch("/attraction/{id:uint}", routes.UpdateAttraction)
		admin.Delete("/attraction/{id:uint}", routes.DeleteAttraction)
		admin.Patch("/route/{id:uint}/verify", routes.VerifyRoute)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Println("listening on :" + port)
	app.Listen(":" + port)
}
