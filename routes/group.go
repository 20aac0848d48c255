package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

type createGroupInput struct {
	Name        string `json:"name" validate:"required,max=30"`
	Description string `json:"description" validate:"max=1500"`
	Nickname    string `json:"nickname" validate:"max=50"`
}

// CreateGroup creates the group and makes the creator its admin in the
// same transaction, so a group can never exist without an admin.
func CreateGroup(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Groups{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Create(id, nil)) {
		return
	}

	var input createGroupInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	group := models.Group{Name: input.Name, Description: input.Description}
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.BelongsTo{
			MemberID: id.MemberID,
			GroupID:  group.ID,
			IsAdmin:  true,
			Nickname: input.Nickname,
		}).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "group": group})
}

// groupView nests the reduced member profile for each membership row.
type groupView struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Members     []membershipView `json:"members"`
}

func groupViewOf(g *models.Group) groupView {
	view := groupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     make([]membershipView, 0, len(g.Members)),
	}
	for i := range g.Members {
		view.Members = append(view.Members, membershipViewOf(&g.Members[i]))
	}
	return view
}

// ListMyGroups returns the groups the requester belongs to; group reads
// are membership-gated, so the queryset is filtered rather than global.
func ListMyGroups(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Groups{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.List(id)) {
		return
	}

	var groups []models.Group
	storage.DB.
		Joins("JOIN belongs_tos m ON m.group_id = groups.id").
		Where("m.member_id = ?", id.MemberID).
		Preload("Members.MemberRef.User").
		Find(&groups)

	views := make([]groupView, 0, len(groups))
	for i := range groups {
		views = append(views, groupViewOf(&groups[i]))
	}
	ctx.JSON(iris.Map{"success": true, "groups": views})
}

func GetGroup(ctx iris.Context) {
	groupID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var group models.Group
	if err := storage.DB.Preload("Members.MemberRef.User").First(&group, groupID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Groups{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &group)) {
		return
	}

	ctx.JSON(iris.Map{"success": true, "group": groupViewOf(&group)})
}

type updateGroupInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func UpdateGroup(ctx iris.Context) {
	groupID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var group models.Group
	if err := storage.DB.First(&group, groupID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Groups{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &group)) {
		return
	}

	var input updateGroupInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(&group).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "group": group})
}

// DeleteGroup removes the group and its membership rows. Group routes
// go with it; member-owned routes are untouched.
func DeleteGroup(ctx iris.Context) {
	groupID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var group models.Group
	if err := storage.DB.First(&group, groupID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Groups{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &group)) {
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var routeIDs []uint
		if err := tx.Model(&models.Route{}).Where("group_id = ?", groupID).Pluck("id", &routeIDs).Error; err != nil {
			return err
		}
		if len(routeIDs) > 0 {
			if err := tx.Where("route_id IN ?", routeIDs).Delete(&models.IsWithin{}).Error; err != nil {
				return err
			}
			if err := tx.Where("route_id IN ?", routeIDs).Delete(&models.RatingFlag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("route_id IN ?", routeIDs).Delete(&models.Notebook{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", routeIDs).Delete(&models.Route{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.BelongsTo{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&group).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}
