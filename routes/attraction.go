package routes

import (
	"encoding/json"
	"strconv"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

// ListAttractions is open to everyone, signed in or not.
func ListAttractions(ctx iris.Context) {
	var attractions []models.Attraction
	storage.DB.Preload("Tags.TagRef").Find(&attractions)
	ctx.JSON(iris.Map{"success": true, "attractions": attractions})
}

func GetAttraction(ctx iris.Context) {
	attractionID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var attraction models.Attraction
	if err := storage.DB.Preload("Tags.TagRef").First(&attraction, attractionID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "attraction": attraction})
}

type createAttractionInput struct {
	Name               string   `json:"name" validate:"required,max=100"`
	GeneralDescription string   `json:"generalDescription" validate:"max=3000"`
	Latitude           float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64  `json:"longitude" validate:"gte=-180,lte=180"`
	Images             []string `json:"images"`
}

// CreateAttraction is admin-only: the catalog is curated, not
// user-generated.
func CreateAttraction(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Attractions{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Create(id, nil)) {
		return
	}

	var input createAttractionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	attraction := models.Attraction{
		Name:               input.Name,
		GeneralDescription: input.GeneralDescription,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
	}
	if len(input.Images) > 0 {
		urls := make([]string, 0, len(input.Images))
		for i, image := range input.Images {
			url := storage.UploadBase64Image(image, "attraction/"+input.Name+"-"+strconv.Itoa(i))
			if url != "" {
				urls = append(urls, url)
			}
		}
		attraction.Images = marshalStringList(urls)
	}

	if err := storage.DB.Create(&attraction).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "attraction.create", "attraction", attraction.ID, nil, attraction)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "attraction": attraction})
}

type updateAttractionInput struct {
	Name               *string  `json:"name" validate:"omitempty,max=100"`
	GeneralDescription *string  `json:"generalDescription" validate:"omitempty,max=3000"`
	Latitude           *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func UpdateAttraction(ctx iris.Context) {
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

	id := utils.CurrentIdentity(ctx)
	rules := authz.Attractions{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &attraction)) {
		return
	}

	var input updateAttractionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := attraction
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.GeneralDescription != nil {
		updates["general_description"] = *input.GeneralDescription
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(&attraction).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		utils.Audit(ctx, "attraction.update", "attraction", attraction.ID, before, attraction)
	}

	ctx.JSON(iris.Map{"success": true, "attraction": attraction})
}

func DeleteAttraction(ctx iris.Context) {
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

	id := utils.CurrentIdentity(ctx)
	rules := authz.Attractions{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &attraction)) {
		return
	}

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attraction_id = ?", attraction.ID).Delete(&models.IsWithin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attraction_id = ?", attraction.ID).Delete(&models.IsTagged{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attraction_id = ?", attraction.ID).Delete(&models.RatingFlag{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&attraction).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "attraction.delete", "attraction", attraction.ID, attraction, nil)

	ctx.JSON(iris.Map{"success": true})
}

type tagAttractionInput struct {
	Tag uint `json:"tag" validate:"required"`
}

// TagAttraction attaches a tag to an attraction. The insert races with
// itself under concurrent requests, so it leans on the unique index: ON
// CONFLICT DO NOTHING, and zero affected rows means the pair already
// existed.
func TagAttraction(ctx iris.Context) {
	attractionID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	id := utils.CurrentIdentity(ctx)
	if id.Anonymous() {
		utils.JSONError(ctx, iris.StatusUnauthorized, "unauthenticated", "sign in to tag attractions")
		return
	}

	var input tagAttractionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var attraction models.Attraction
	if err := storage.DB.First(&attraction, attractionID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var tag models.Tag
	if err := storage.DB.First(&tag, input.Tag).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "tag does not exist")
		return
	}

	row := models.IsTagged{AttractionID: attraction.ID, TagID: tag.ID}
	result := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.JSONError(ctx, iris.StatusConflict, "conflict", "attraction already carries this tag")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "tagged": row})
}

func UntagAttraction(ctx iris.Context) {
	attractionID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}
	tagID, err := ctx.Params().GetUint("tagID")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	id := utils.CurrentIdentity(ctx)
	if id.Anonymous() {
		utils.JSONError(ctx, iris.StatusUnauthorized, "unauthenticated", "sign in to untag attractions")
		return
	}

	result := storage.DB.Where("attraction_id = ? AND tag_id = ?", attractionID, tagID).Delete(&models.IsTagged{})
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

// ListTags returns the tag vocabulary.
func ListTags(ctx iris.Context) {
	var tags []models.Tag
	storage.DB.Order("name ASC").Find(&tags)
	ctx.JSON(iris.Map{"success": true, "tags": tags})
}

// CreateTag grows the tag vocabulary; any signed-in member may add one,
// and a duplicate name is a conflict.
func CreateTag(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	if id.Anonymous() {
		utils.JSONError(ctx, iris.StatusUnauthorized, "unauthenticated", "sign in to create tags")
		return
	}

	var input struct {
		Name string `json:"name" validate:"required,max=50"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	tag := models.Tag{Name: input.Name}
	if err := storage.DB.Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			utils.JSONError(ctx, iris.StatusConflict, "conflict", "tag already exists")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "tag": tag})
}

func marshalStringList(values []string) datatypes.JSON {
	out, _ := json.Marshal(values)
	return datatypes.JSON(out)
}
