package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

// ratingView nests the reduced author profile in rating listings.
type ratingView struct {
	ID         uint             `json:"id"`
	Route      *uint            `json:"route"`
	Attraction *uint            `json:"attraction"`
	Rating     *int             `json:"rating"`
	Comment    string           `json:"comment"`
	FlagType   *models.FlagType `json:"flagType,omitempty"`
	Author     smallMemberView  `json:"author"`
}

func ratingViewsOf(rows []models.RatingFlag) []ratingView {
	views := make([]ratingView, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		views = append(views, ratingView{
			ID:         r.ID,
			Route:      r.RouteID,
			Attraction: r.AttractionID,
			Rating:     r.Rating,
			Comment:    r.Comment,
			FlagType:   r.FlagTypeRef,
			Author:     smallMember(&r.MemberRef),
		})
	}
	return views
}

type createRatingInput struct {
	Route      *uint  `json:"route"`
	Attraction *uint  `json:"attraction"`
	Rating     *int   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	FlagType   *uint  `json:"flagType"`
	Comment    string `json:"comment" validate:"max=1000"`
}

// CreateRating submits a review of a route or an attraction. The author
// is always the requester, and the one-review-per-target rule rides on
// the unique index, so a duplicate comes back as a conflict.
func CreateRating(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)

	var input createRatingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	rating := models.RatingFlag{
		MemberID:     id.MemberID,
		RouteID:      input.Route,
		AttractionID: input.Attraction,
		Rating:       input.Rating,
		FlagTypeID:   input.FlagType,
		Comment:      input.Comment,
	}

	rules := authz.Ratings{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Create(id, &rating)) {
		return
	}

	if input.Attraction != nil {
		var attraction models.Attraction
		if err := storage.DB.First(&attraction, *input.Attraction).Error; err != nil {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "attraction does not exist")
			return
		}
	}
	if input.FlagType != nil {
		var flagType models.FlagType
		if err := storage.DB.First(&flagType, *input.FlagType).Error; err != nil {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation_failed", "unknown flag type")
			return
		}
	}

	if err := storage.DB.Create(&rating).Error; err != nil {
		if isUniqueViolation(err) {
			utils.JSONError(ctx, iris.StatusConflict, "conflict", "this target has already been reviewed")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "rating": rating})
}

// ListRouteRatings returns the reviews of one route, gated on the
// route's visibility.
func ListRouteRatings(ctx iris.Context) {
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

	var ratings []models.RatingFlag
	storage.DB.Where("route_id = ?", routeID).
		Preload("MemberRef.User").Preload("FlagTypeRef").
		Find(&ratings)
	ctx.JSON(iris.Map{"success": true, "ratings": ratingViewsOf(ratings)})
}

// ListAttractionRatings returns the reviews of one attraction;
// attractions are globally readable, so their reviews are too.
func ListAttractionRatings(ctx iris.Context) {
	attractionID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var attraction models.Attraction
	if err := storage.DB.First(&attraction, attractionID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var ratings []models.RatingFlag
	storage.DB.Where("attraction_id = ?", attractionID).
		Preload("MemberRef.User").Preload("FlagTypeRef").
		Find(&ratings)
	ctx.JSON(iris.Map{"success": true, "ratings": ratingViewsOf(ratings)})
}

type updateRatingInput struct {
	Rating   *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	FlagType *uint   `json:"flagType"`
	Comment  *string `json:"comment" validate:"omitempty,max=1000"`
}

// UpdateRating edits the author's own review. The target is immutable;
// reviewing a different route means a new review.
func UpdateRating(ctx iris.Context) {
	ratingID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var rating models.RatingFlag
	if err := storage.DB.First(&rating, ratingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Ratings{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &rating)) {
		return
	}

	var input updateRatingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Rating != nil {
		updates["rating"] = *input.Rating
	}
	if input.FlagType != nil {
		updates["flag_type_id"] = *input.FlagType
	}
	if input.Comment != nil {
		updates["comment"] = *input.Comment
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(&rating).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "rating": rating})
}

func DeleteRating(ctx iris.Context) {
	ratingID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var rating models.RatingFlag
	if err := storage.DB.First(&rating, ratingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Ratings{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &rating)) {
		return
	}

	if err := storage.DB.Delete(&rating).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}
