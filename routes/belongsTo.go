package routes

import (
	"errors"
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

// membershipView nests the reduced member profile; co-members never see
// each other's contact fields.
type membershipView struct {
	ID       uint            `json:"id"`
	Group    uint            `json:"group"`
	IsAdmin  bool            `json:"isAdmin"`
	Nickname string          `json:"nickname"`
	Member   smallMemberView `json:"member"`
}

func membershipViewOf(row *models.BelongsTo) membershipView {
	return membershipView{
		ID:       row.ID,
		Group:    row.GroupID,
		IsAdmin:  row.IsAdmin,
		Nickname: row.Nickname,
		Member:   smallMember(&row.MemberRef),
	}
}

type createMembershipInput struct {
	Member   uint   `json:"member"`
	Group    uint   `json:"group" validate:"required"`
	Nickname string `json:"nickname" validate:"max=50"`
}

// isUniqueViolation reports whether a create failed on the (member,
// group) or similar uniqueness constraint. The constraint in the store
// is the authority under concurrent requests; the handler only names
// the failure.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// CreateMembership handles both self-join and admin-add. The decision
// layer validates the payload before authorizing, so a smuggled target
// member fails as a bad request rather than a permission error.
func CreateMembership(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)

	var input createMembershipInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	rules := authz.Memberships{Store: authz.GormStore{DB: storage.DB}}
	decision := rules.CreateMembership(id, authz.MembershipCreate{
		MemberID: input.Member,
		GroupID:  input.Group,
		Nickname: input.Nickname,
	})
	if !utils.WriteDecision(ctx, decision) {
		return
	}

	targetMember := input.Member
	if targetMember == 0 {
		targetMember = id.MemberID
	}

	row := models.BelongsTo{
		MemberID: targetMember,
		GroupID:  input.Group,
		Nickname: input.Nickname,
	}
	if err := storage.DB.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			utils.JSONError(ctx, iris.StatusConflict, "conflict", "already a member of this group")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "membership": row})
}

func GetMembership(ctx iris.Context) {
	membershipID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var row models.BelongsTo
	if err := storage.DB.Preload("MemberRef.User").First(&row, membershipID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Memberships{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &row)) {
		return
	}

	ctx.JSON(iris.Map{"success": true, "membership": membershipViewOf(&row)})
}

type updateMembershipInput struct {
	Member   *uint   `json:"member"`
	Group    *uint   `json:"group"`
	IsAdmin  *bool   `json:"isAdmin"`
	Nickname *string `json:"nickname"`
}

// UpdateMembership applies the field-scoped rules: admins control
// isAdmin, the subject controls nickname, the pair itself is immutable.
func UpdateMembership(ctx iris.Context) {
	membershipID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var row models.BelongsTo
	if err := storage.DB.First(&row, membershipID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input updateMembershipInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Memberships{Store: authz.GormStore{DB: storage.DB}}
	decision := rules.UpdateMembership(id, authz.MembershipUpdate{
		Row:      &row,
		IsAdmin:  input.IsAdmin,
		Nickname: input.Nickname,
		MemberID: input.Member,
		GroupID:  input.Group,
	})
	if !utils.WriteDecision(ctx, decision) {
		return
	}

	updates := map[string]interface{}{}
	if input.IsAdmin != nil {
		updates["is_admin"] = *input.IsAdmin
	}
	if input.Nickname != nil {
		updates["nickname"] = *input.Nickname
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(&row).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "membership": row})
}

// DeleteMembership covers self-leave and admin removal.
func DeleteMembership(ctx iris.Context) {
	membershipID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var row models.BelongsTo
	if err := storage.DB.First(&row, membershipID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Memberships{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &row)) {
		return
	}

	if err := storage.DB.Delete(&row).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

// GetGroupMembers lists the membership rows of one group,
// membership-gated like any other group read.
func GetGroupMembers(ctx iris.Context) {
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
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &group)) {
		return
	}

	var rows []models.BelongsTo
	storage.DB.Where("group_id = ?", groupID).Preload("MemberRef.User").Find(&rows)

	members := make([]membershipView, 0, len(rows))
	for i := range rows {
		members = append(members, membershipViewOf(&rows[i]))
	}
	ctx.JSON(iris.Map{"success": true, "members": members})
}

// GetMemberGroups lists the groups of one member. Only the member
// themself may ask; group affiliations are not public.
func GetMemberGroups(ctx iris.Context) {
	memberID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var member models.Member
	if err := storage.DB.First(&member, memberID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	if !authz.IsSelf(id, &member) {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "only the member may list their groups")
		return
	}

	var rows []models.BelongsTo
	storage.DB.Where("member_id = ?", memberID).Preload("GroupRef").Find(&rows)
	ctx.JSON(iris.Map{"success": true, "groups": rows})
}
