package utils

import (
	"github.com/kataras/iris/v12"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithJSON(statusCode, iris.Map{"title": title, "detail": detail})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "resource not found", ctx)
}

func HandleValidationErrors(err error, ctx iris.Context) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
		"title":  "Validation Error",
		"detail": err.Error(),
	})
}

// WriteDecision maps a deny to its HTTP status and stops the request.
// It returns true when the request may proceed.
func WriteDecision(ctx iris.Context, d authz.Decision) bool {
	if d.Allowed() {
		return true
	}
	switch d.Code {
	case authz.CodeUnauthenticated:
		JSONError(ctx, iris.StatusUnauthorized, "unauthenticated", d.Reason)
	case authz.CodeForbidden:
		JSONError(ctx, iris.StatusForbidden, "forbidden", d.Reason)
	case authz.CodeValidationFailed:
		JSONError(ctx, iris.StatusBadRequest, "validation_failed", d.Reason)
	case authz.CodeNotFound:
		JSONError(ctx, iris.StatusNotFound, "not_found", d.Reason)
	case authz.CodeConflict:
		JSONError(ctx, iris.StatusConflict, "conflict", d.Reason)
	default:
		JSONError(ctx, iris.StatusForbidden, "forbidden", d.Reason)
	}
	ctx.StopExecution()
	return false
}
