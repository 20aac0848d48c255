package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

type addRouteAttractionInput struct {
	Route       uint `json:"route" validate:"required"`
	Attraction  uint `json:"attraction" validate:"required"`
	OrderNumber int  `json:"orderNumber" validate:"gte=0"`
}

// AddRouteAttraction appends an attraction to a route's itinerary. A
// duplicate (route, attraction) pair hits the unique index and surfaces
// as a conflict rather than an internal error.
func AddRouteAttraction(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)

	var input addRouteAttractionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	rules := authz.RouteAttractions{Store: authz.GormStore{DB: storage.DB}}
	row := models.IsWithin{
		RouteID:      input.Route,
		AttractionID: input.Attraction,
		OrderNumber:  input.OrderNumber,
	}
	if !utils.WriteDecision(ctx, rules.Create(id, &row)) {
		return
	}

	var attraction models.Attraction
	if err := storage.DB.First(&attraction, input.Attraction).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "attraction does not exist")
		return
	}

	if err := storage.DB.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			utils.JSONError(ctx, iris.StatusConflict, "conflict", "attraction is already part of the route")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "entry": row})
}

// ListRouteAttractions returns a route's itinerary in order, gated on the
// route's visibility.
func ListRouteAttractions(ctx iris.Context) {
	routeID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var route models.Route
	if err := storage.DB.First(&route, routeID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Routes{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &route)) {
		return
	}

	var entries []models.IsWithin
	storage.DB.Where("route_id = ?", routeID).
		Order("order_number ASC").
		Preload("AttractionRef").
		Find(&entries)
	ctx.JSON(iris.Map{"success": true, "entries": entries})
}

type updateRouteAttractionInput struct {
	OrderNumber *int `json:"orderNumber" validate:"omitempty,gte=0"`
}

// UpdateRouteAttraction reorders one entry. The pair itself is fixed;
// moving an attraction between routes is a delete plus a create.
func UpdateRouteAttraction(ctx iris.Context) {
	entryID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var entry models.IsWithin
	if err := storage.DB.First(&entry, entryID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.RouteAttractions{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &entry)) {
		return
	}

	var input updateRouteAttractionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.OrderNumber != nil {
		if err := storage.DB.Model(&entry).Update("order_number", *input.OrderNumber).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "entry": entry})
}

func RemoveRouteAttraction(ctx iris.Context) {
	entryID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var entry models.IsWithin
	if err := storage.DB.First(&entry, entryID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.RouteAttractions{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &entry)) {
		return
	}

	if err := storage.DB.Delete(&entry).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}
