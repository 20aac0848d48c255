package routes

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

// smallMemberView is the reduced profile non-self viewers get: no
// contact field, no birth date.
type smallMemberView struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ProfilePhoto string `json:"profilePhoto"`
}

func smallMember(m *models.Member) smallMemberView {
	return smallMemberView{
		ID:           m.ID,
		Username:     m.User.Username,
		FirstName:    m.User.FirstName,
		LastName:     m.User.LastName,
		ProfilePhoto: m.ProfilePhoto,
	}
}

func ListMembers(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Members{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.List(id)) {
		return
	}

	var members []models.Member
	if err := storage.DB.Preload("User").Find(&members).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	views := make([]interface{}, 0, len(members))
	for i := range members {
		if authz.IsSelf(id, &members[i]) {
			views = append(views, &members[i])
		} else {
			views = append(views, smallMember(&members[i]))
		}
	}
	ctx.JSON(iris.Map{"success": true, "members": views})
}

func GetMember(ctx iris.Context) {
	memberID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var member models.Member
	if err := storage.DB.Preload("User").First(&member, memberID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Members{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &member)) {
		return
	}

	if authz.IsSelf(id, &member) {
		// Full profile, with the member's own content attached.
		storage.DB.Preload("Memberships.GroupRef").
			Preload("Routes").
			Preload("Notebooks").
			Preload("Ratings").
			First(&member, memberID)
		ctx.JSON(iris.Map{"success": true, "member": &member})
		return
	}
	ctx.JSON(iris.Map{"success": true, "member": smallMember(&member)})
}

type updateMemberInput struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ProfilePhoto *string `json:"profilePhoto"`
	BirthDate    *string `json:"birthDate"` // YYYY-MM-DD
}

func UpdateMember(ctx iris.Context) {
	memberID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var member models.Member
	if err := storage.DB.Preload("User").First(&member, memberID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Members{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &member)) {
		return
	}

	var input updateMemberInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userUpdates := map[string]interface{}{}
	if input.FirstName != nil {
		userUpdates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		userUpdates["last_name"] = *input.LastName
	}
	if input.Email != nil {
		userUpdates["email"] = strings.ToLower(*input.Email)
	}
	if len(userUpdates) > 0 {
		if err := storage.DB.Model(&member.User).Updates(userUpdates).Error; err != nil {
			if isUniqueViolation(err) {
				utils.JSONError(ctx, iris.StatusConflict, "conflict", "email already registered")
				return
			}
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	memberUpdates := map[string]interface{}{}
	if input.ProfilePhoto != nil {
		if url := storage.UploadBase64Image(*input.ProfilePhoto, memberPhotoID(member.ID)); url != "" {
			memberUpdates["profile_photo"] = url
		}
	}
	if input.BirthDate != nil {
		if *input.BirthDate == "" {
			memberUpdates["birth_date"] = nil
		} else {
			birthDate, parseErr := time.Parse("2006-01-02", *input.BirthDate)
			if parseErr != nil {
				utils.CreateError(iris.StatusBadRequest, "Validation Error", "birthDate must be YYYY-MM-DD", ctx)
				return
			}
			memberUpdates["birth_date"] = &birthDate
		}
	}
	if len(memberUpdates) > 0 {
		if err := storage.DB.Model(&member).Updates(memberUpdates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "member": &member})
}

// DeleteMember removes the member's user account and cascades through
// everything the member owns.
func DeleteMember(ctx iris.Context) {
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
	rules := authz.Members{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &member)) {
		return
	}

	if err := storage.DeleteUserCascade(storage.DB, member.UserID); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

type alterSavedRoutesInput struct {
	RouteID uint   `json:"routeID" validate:"required"`
	Op      string `json:"op" validate:"required,oneof=add remove"`
}

// AlterSavedRoutes adds or removes a bookmark on the requester's profile.
func AlterSavedRoutes(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	if id == nil || id.MemberID == 0 {
		ctx.StopWithStatus(iris.StatusUnauthorized)
		return
	}

	var input alterSavedRoutesInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var member models.Member
	if err := storage.DB.First(&member, id.MemberID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var saved []uint
	if member.SavedRoutes != nil {
		json.Unmarshal(member.SavedRoutes, &saved)
	}

	switch input.Op {
	case "add":
		if !slices.Contains(saved, input.RouteID) {
			saved = append(saved, input.RouteID)
		}
	case "remove":
		if i := slices.Index(saved, input.RouteID); i >= 0 {
			saved = slices.Delete(saved, i, i+1)
		}
	}

	encoded, _ := json.Marshal(saved)
	if err := storage.DB.Model(&member).Update("saved_routes", encoded).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "savedRoutes": saved})
}

func memberPhotoID(memberID uint) string {
	return "profile-photos/" + strconv.FormatUint(uint64(memberID), 10)
}
