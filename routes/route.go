package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

type createRouteInput struct {
	Title            string  `json:"title" validate:"required,max=50"`
	Description      string  `json:"description" validate:"max=3000"`
	Public           bool    `json:"public"`
	StartingPointLat float64 `json:"startingPointLat" validate:"gte=-90,lte=90"`
	StartingPointLon float64 `json:"startingPointLon" validate:"gte=-180,lte=180"`
	User             *uint   `json:"user"`
	Group            *uint   `json:"group"`
}

// CreateRoute creates a member-owned or group-owned route. The owner
// fields come from the payload so that group members can publish on the
// group's behalf; the decision layer enforces the exactly-one-owner rule
// and the requester's standing toward that owner. The verified flag is
// never read from the payload.
func CreateRoute(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)

	var input createRouteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	rules := authz.Routes{Store: authz.GormStore{DB: storage.DB}}
	decision := rules.CreateRoute(id, authz.RouteCreate{UserID: input.User, GroupID: input.Group})
	if !utils.WriteDecision(ctx, decision) {
		return
	}

	route := models.Route{
		Title:            input.Title,
		Description:      input.Description,
		Public:           input.Public,
		StartingPointLat: input.StartingPointLat,
		StartingPointLon: input.StartingPointLon,
		UserID:           input.User,
		GroupID:          input.Group,
	}
	if err := storage.DB.Create(&route).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "route": route})
}

func GetRoute(ctx iris.Context) {
	routeID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var route models.Route
	query := storage.DB.Preload("Attractions.AttractionRef").Preload("Owner").Preload("OwnerGroup")
	if err := query.First(&route, routeID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Routes{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &route)) {
		return
	}

	ctx.JSON(iris.Map{"success": true, "route": route})
}

// ListRoutes returns every route the requester may see: public routes,
// their own, and those of groups they belong to.
func ListRoutes(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Routes{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.List(id)) {
		return
	}

	var routes []models.Route
	err := storage.DB.
		Where("public = ?", true).
		Or("user_id = ?", id.MemberID).
		Or("group_id IN (?)", storage.DB.Model(&models.BelongsTo{}).
			Select("group_id").Where("member_id = ?", id.MemberID)).
		Order("publication_date DESC").
		Find(&routes).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "routes": routes})
}

type updateRouteInput struct {
	Title            *string  `json:"title" validate:"omitempty,max=50"`
	Description      *string  `json:"description" validate:"omitempty,max=3000"`
	Public           *bool    `json:"public"`
	StartingPointLat *float64 `json:"startingPointLat" validate:"omitempty,gte=-90,lte=90"`
	StartingPointLon *float64 `json:"startingPointLon" validate:"omitempty,gte=-180,lte=180"`
}

// UpdateRoute ignores ownership and verification fields entirely; the
// owner is fixed at creation and verification has its own admin endpoint.
func UpdateRoute(ctx iris.Context) {
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
	if !utils.WriteDecision(ctx, rules.Update(id, &route)) {
		return
	}

	var input updateRouteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Public != nil {
		updates["public"] = *input.Public
	}
	if input.StartingPointLat != nil {
		updates["starting_point_lat"] = *input.StartingPointLat
	}
	if input.StartingPointLon != nil {
		updates["starting_point_lon"] = *input.StartingPointLon
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(&route).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "route": route})
}

// DeleteRoute removes a route together with its dependent rows. The
// children go first so the uniqueness constraints stay satisfiable for a
// recreated route.
func DeleteRoute(ctx iris.Context) {
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
	if !utils.WriteDecision(ctx, rules.Destroy(id, &route)) {
		return
	}

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.IsWithin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.RatingFlag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.Notebook{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&route).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// VerifyRoute is the admin endpoint that flips a route's verified badge,
// with an audit trail entry.
func VerifyRoute(ctx iris.Context) {
	routeID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var input struct {
		Verified bool `json:"verified"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var route models.Route
	if err := storage.DB.First(&route, routeID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := iris.Map{"verified": route.Verified}
	if err := storage.DB.Model(&route).Update("verified", input.Verified).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "route.verify", "route", route.ID, before, iris.Map{"verified": input.Verified})

	ctx.JSON(iris.Map{"success": true, "route": route})
}
