package routes

import (
	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/kataras/iris/v12"
)

type OwnerInput struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Notes       string `json:"notes"`
}

func AdminListOwners(ctx iris.Context) {
	var owners []models.Owner
	if err := storage.DB.Order("last_name ASC, first_name ASC").Find(&owners).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(owners)
}

func AdminGetOwner(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid owner id", ctx)
		return
	}
	var owner models.Owner
	if err := storage.DB.Preload("Listings").First(&owner, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(owner)
}

func AdminCreateOwner(ctx iris.Context) {
	var input OwnerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	owner := models.Owner{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Notes:       input.Notes,
	}
	if err := storage.DB.Create(&owner).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to create owner", ctx)
		return
	}

	utils.Audit(ctx, "owner.create", "owner", owner.ID, nil, owner)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(owner)
}

func AdminUpdateOwner(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid owner id", ctx)
		return
	}

	var input OwnerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var owner models.Owner
	if err := storage.DB.First(&owner, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := owner
	owner.FirstName = input.FirstName
	owner.LastName = input.LastName
	owner.Email = input.Email
	owner.PhoneNumber = input.PhoneNumber
	owner.Notes = input.Notes
	if err := storage.DB.Save(&owner).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to update owner", ctx)
		return
	}

	utils.Audit(ctx, "owner.update", "owner", owner.ID, before, owner)
	ctx.JSON(owner)
}

// AdminDeleteOwner refuses while listings still reference the owner.
func AdminDeleteOwner(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid owner id", ctx)
		return
	}

	var owner models.Owner
	if err := storage.DB.First(&owner, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var listings int64
	storage.DB.Model(&models.Listing{}).Where("owner_id = ?", id).Count(&listings)
	if listings > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "owner still has listings", ctx)
		return
	}

	if err := storage.DB.Delete(&owner).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to delete owner", ctx)
		return
	}

	utils.Audit(ctx, "owner.delete", "owner", owner.ID, owner, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
