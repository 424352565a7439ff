package routes

import (
	"fmt"
	"path/filepath"
	"strings"

	"acropolis-estates-server/models"
	"acropolis-estates-server/storage"
	"acropolis-estates-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

const maxImageSize = 10 << 20 // 10 MB

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// AdminUploadListingImage accepts a multipart image, stores it in S3 under
// a listing-scoped key, and records the resulting URL.
func AdminUploadListingImage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid listing id", ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.SetMaxRequestBodySize(maxImageSize)
	file, header, err := ctx.FormFile("image")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "missing 'image' file", ctx)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedImageExtensions[ext]
	if !ok {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "unsupported image type", ctx)
		return
	}

	key := fmt.Sprintf("listings/%d/%s%s", listing.ID, uuid.NewString(), ext)
	url, err := storage.UploadListingImage(ctx.Request().Context(), file, key, contentType)
	if err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to upload image", ctx)
		return
	}

	var existing int64
	storage.DB.Model(&models.ListingImage{}).Where("listing_id = ?", listing.ID).Count(&existing)

	image := models.ListingImage{
		ListingID:   listing.ID,
		URL:         url,
		IsFirst:     existing == 0,
		Order:       int(existing),
		Description: ctx.FormValue("description"),
	}
	if err := storage.DB.Create(&image).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to save image record", ctx)
		return
	}

	utils.Audit(ctx, "listing.image.upload", "listing", listing.ID, nil, image)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(image)
}

// AdminDeleteListingImage removes the image record. The object stays in S3;
// stale objects get cleaned up out of band.
func AdminDeleteListingImage(ctx iris.Context) {
	imageID, err := ctx.Params().GetUint("imageID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid image id", ctx)
		return
	}

	var image models.ListingImage
	if err := storage.DB.First(&image, imageID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if err := storage.DB.Delete(&image).Error; err != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", "Failed to delete image", ctx)
		return
	}

	utils.Audit(ctx, "listing.image.delete", "listing", image.ListingID, image, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
