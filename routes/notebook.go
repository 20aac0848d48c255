package routes

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/authz"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/storage"
	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/utils"
)

type createNotebookInput struct {
	Route  uint   `json:"route" validate:"required"`
	Status *uint  `json:"status"`
	Title  string `json:"title" validate:"max=100"`
	Note   string `json:"note"`
	Photo  string `json:"photo"`
}

// CreateNotebook starts a journal for a route. The author is always the
// requester; a member field in the payload is ignored. The route must
// exist but need not be visible, so a journal survives the route going
// private.
func CreateNotebook(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)

	var input createNotebookInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	notebook := models.Notebook{
		RouteID:  input.Route,
		MemberID: id.MemberID,
		Title:    input.Title,
		Note:     input.Note,
	}

	rules := authz.Notebooks{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Create(id, &notebook)) {
		return
	}

	// Dates move only through status transitions; creation itself stamps
	// nothing.
	if input.Status != nil {
		now := time.Now()
		var status models.Status
		if err := storage.DB.First(&status, *input.Status).Error; err != nil {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation_failed", "unknown status")
			return
		}
		notebook.ApplyStatusTransition(nil, &status, now)
	}
	if input.Photo != "" {
		notebook.Photo = storage.UploadBase64Image(input.Photo, notebookPhotoID(id.MemberID, input.Route))
	}

	if err := storage.DB.Create(&notebook).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "notebook": notebook})
}

// ListMyNotebooks returns the requester's journals only.
func ListMyNotebooks(ctx iris.Context) {
	id := utils.CurrentIdentity(ctx)
	rules := authz.Notebooks{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.List(id)) {
		return
	}

	var notebooks []models.Notebook
	storage.DB.Where("member_id = ?", id.MemberID).
		Preload("RouteRef").Preload("StatusRef").
		Find(&notebooks)
	ctx.JSON(iris.Map{"success": true, "notebooks": notebooks})
}

func GetNotebook(ctx iris.Context) {
	notebookID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var notebook models.Notebook
	if err := storage.DB.Preload("RouteRef").Preload("StatusRef").First(&notebook, notebookID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Notebooks{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Retrieve(id, &notebook)) {
		return
	}

	ctx.JSON(iris.Map{"success": true, "notebook": notebook})
}

type updateNotebookInput struct {
	Status *uint   `json:"status"`
	Title  *string `json:"title" validate:"omitempty,max=100"`
	Note   *string `json:"note"`
	Photo  *string `json:"photo"`
}

// UpdateNotebook edits the journal and drives the lifecycle dates off
// status transitions: entering "completed" stamps the completion date,
// leaving it clears the stamp and restarts the trip.
func UpdateNotebook(ctx iris.Context) {
	notebookID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var notebook models.Notebook
	if err := storage.DB.Preload("StatusRef").First(&notebook, notebookID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Notebooks{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Update(id, &notebook)) {
		return
	}

	var input updateNotebookInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != nil {
		notebook.Title = *input.Title
	}
	if input.Note != nil {
		notebook.Note = *input.Note
	}
	if input.Photo != nil && *input.Photo != "" {
		notebook.Photo = storage.UploadBase64Image(*input.Photo, notebookPhotoID(notebook.MemberID, notebook.RouteID))
	}
	if input.Status != nil {
		var to *models.Status
		if *input.Status != 0 {
			var status models.Status
			if err := storage.DB.First(&status, *input.Status).Error; err != nil {
				utils.JSONError(ctx, iris.StatusBadRequest, "validation_failed", "unknown status")
				return
			}
			to = &status
		}
		notebook.ApplyStatusTransition(notebook.StatusRef, to, time.Now())
		notebook.StatusRef = to
	}

	// Persist with an explicit column map: saving the full struct would
	// let the preloaded status association re-link a cleared status_id.
	updates := map[string]interface{}{
		"title":          notebook.Title,
		"note":           notebook.Note,
		"photo":          notebook.Photo,
		"status_id":      notebook.StatusID,
		"date_started":   notebook.DateStarted,
		"date_completed": notebook.DateCompleted,
	}
	if err := storage.DB.Model(&notebook).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "notebook": notebook})
}

func DeleteNotebook(ctx iris.Context) {
	notebookID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(iris.StatusBadRequest)
		return
	}

	var notebook models.Notebook
	if err := storage.DB.First(&notebook, notebookID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	id := utils.CurrentIdentity(ctx)
	rules := authz.Notebooks{Store: authz.GormStore{DB: storage.DB}}
	if !utils.WriteDecision(ctx, rules.Destroy(id, &notebook)) {
		return
	}

	if err := storage.DB.Unscoped().Delete(&notebook).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

// ListStatuses exposes the seeded lifecycle statuses for clients.
func ListStatuses(ctx iris.Context) {
	var statuses []models.Status
	storage.DB.Order("id ASC").Find(&statuses)
	ctx.JSON(iris.Map{"success": true, "statuses": statuses})
}

func notebookPhotoID(memberID, routeID uint) string {
	return "notebook/" + strconv.FormatUint(uint64(memberID), 10) + "-" + strconv.FormatUint(uint64(routeID), 10)
}
