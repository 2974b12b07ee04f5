package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"property-import-backend/internal/cloudinary"
	"property-import-backend/internal/middleware"
	"property-import-backend/internal/models"
)

// MediaGateway is the media upload gateway.
type MediaGateway interface {
	UploadMultipleFiles(ctx context.Context, files []cloudinary.File, opts cloudinary.UploadOptions,
		onFileProgress func(int, cloudinary.Progress), onOverallProgress func(int)) ([]cloudinary.UploadResult, error)
	UploadPropertyImages(ctx context.Context, files []cloudinary.File, onOverallProgress func(int)) ([]cloudinary.UploadResult, error)
	UploadProfileImage(ctx context.Context, file cloudinary.File, userID, role string, onProgress func(cloudinary.Progress)) (*cloudinary.UploadResult, error)
	UploadIDDocument(ctx context.Context, file cloudinary.File, userID string, onProgress func(cloudinary.Progress)) (*cloudinary.UploadResult, error)
	UploadArtisanWork(ctx context.Context, files []cloudinary.File, artisanID string, onOverallProgress func(int)) ([]cloudinary.UploadResult, error)
	DeleteFile(ctx context.Context, resourceType cloudinary.ResourceType, publicID string) error
	GetImageSizes(publicID string) cloudinary.ImageSizes
}

// Upload kinds accepted by the media endpoint.
const (
	KindGeneric     = "generic"
	KindProperty    = "property"
	KindProfile     = "profile"
	KindIDDocument  = "id-document"
	KindArtisanWork = "artisan-work"
)

const maxMultipartMemory = 32 << 20

var allowedUploadFields = map[string]bool{
	"kind":           true,
	"folder":         true,
	"resource_type":  true,
	"transformation": true,
	"tags":           true,
	"quality":        true,
	"format":         true,
	"eager":          true,
	"role":           true,
	"artisan_id":     true,
}

type MediaHandler struct {
	gateway MediaGateway
}

func NewMediaHandler(gateway MediaGateway) *MediaHandler {
	return &MediaHandler{gateway: gateway}
}

// Upload godoc
// @Summary     Upload media
// @Description Uploads one or more files to the media host.
// @Description
// @Description **Kinds:**
// @Description - generic: options come from the form fields
// @Description - property: property images, optimised delivery
// @Description - profile: one face-cropped 400x400 profile image
// @Description - id-document: one identity document, PDFs go through the raw pipeline
// @Description - artisan-work: portfolio images tagged with artisan_id
// @Description
// @Description Unknown form fields are rejected.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       files          formData file   true  "Files (multiple allowed)"
// @Param       kind           formData string false "generic, property, profile, id-document or artisan-work"
// @Param       folder         formData string false "properties, profiles, documents or artisans"
// @Param       resource_type  formData string false "image, raw, video or auto"
// @Param       transformation formData string false "Incoming transformation"
// @Param       tags           formData string false "Comma-separated tags"
// @Param       quality        formData string false "auto or 1-100"
// @Param       format         formData string false "auto, webp, jpg or png"
// @Param       eager          formData string false "Eager transformations separated by |, e.g. w_400,h_300,c_pad|w_260,h_200,c_crop"
// @Param       role           formData string false "Role tag for profile uploads when the token has no role"
// @Param       artisan_id     formData string false "Artisan ID for artisan-work uploads"
// @Success     200 {object} models.MediaUploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(c, "failed to parse multipart form", err)
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	if err := checkUploadFields(form); err != nil {
		badRequest(c, "invalid form", err)
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		badRequest(c, "no files uploaded", fmt.Errorf("provide files in the %q field", "files"))
		return
	}

	files, closeAll, err := openFiles(headers)
	if err != nil {
		badRequest(c, "failed to read upload", err)
		return
	}
	defer closeAll()

	ctx := c.Request.Context()
	userID := c.GetString(middleware.UserIDKey)
	kind := formValue(form, "kind")
	if kind == "" {
		kind = KindGeneric
	}

	var results []cloudinary.UploadResult
	switch kind {
	case KindGeneric:
		results, err = h.gateway.UploadMultipleFiles(ctx, files, uploadOptions(form), nil, nil)
	case KindProperty:
		results, err = h.gateway.UploadPropertyImages(ctx, files, nil)
	case KindArtisanWork:
		artisanID := formValue(form, "artisan_id")
		if artisanID == "" {
			artisanID = userID
		}
		results, err = h.gateway.UploadArtisanWork(ctx, files, artisanID, nil)
	case KindProfile, KindIDDocument:
		if len(files) != 1 {
			badRequest(c, "invalid form", fmt.Errorf("%s uploads take exactly one file", kind))
			return
		}
		var res *cloudinary.UploadResult
		if kind == KindProfile {
			role, roleErr := profileRole(c.GetString(middleware.RoleKey), formValue(form, "role"))
			if roleErr != nil {
				badRequest(c, "invalid form", roleErr)
				return
			}
			res, err = h.gateway.UploadProfileImage(ctx, files[0], userID, role, nil)
		} else {
			res, err = h.gateway.UploadIDDocument(ctx, files[0], userID, nil)
		}
		if res != nil {
			results = []cloudinary.UploadResult{*res}
		}
	default:
		badRequest(c, "invalid form", fmt.Errorf("unknown kind %q", kind))
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MediaUploadResponse{Results: results})
}

// Delete godoc
// @Summary     Delete media
// @Description Destroys an asset with a signed request. Requires the API key and secret.
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       resource_type path string true "image, raw or video"
// @Param       public_id     path string true "Public ID, may contain slashes"
// @Success     200 {object} models.DeleteMediaResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     501 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /media/{resource_type}/{public_id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	rt := cloudinary.ResourceType(c.Param("resource_type"))
	if !rt.Valid() {
		badRequest(c, "invalid resource type", fmt.Errorf("unsupported resource type %q", rt))
		return
	}
	publicID := trimWildcard(c.Param("public_id"))
	if publicID == "" {
		badRequest(c, "missing public id", nil)
		return
	}

	if err := h.gateway.DeleteFile(c.Request.Context(), rt, publicID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteMediaResponse{PublicID: publicID, Deleted: true})
}

// Sizes godoc
// @Summary     Responsive image URLs
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       public_id path string true "Public ID, may contain slashes"
// @Success     200 {object} models.ImageSizesResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /media/sizes/{public_id} [get]
func (h *MediaHandler) Sizes(c *gin.Context) {
	publicID := trimWildcard(c.Param("public_id"))
	if publicID == "" {
		badRequest(c, "missing public id", nil)
		return
	}
	c.JSON(http.StatusOK, models.ImageSizesResponse{PublicID: publicID, Sizes: h.gateway.GetImageSizes(publicID)})
}

func checkUploadFields(form *multipart.Form) error {
	for name := range form.File {
		if name != "files" {
			return fmt.Errorf("unknown file field %q", name)
		}
	}
	for name := range form.Value {
		if !allowedUploadFields[name] {
			return fmt.Errorf("unknown field %q", name)
		}
	}
	return nil
}

func openFiles(headers []*multipart.FileHeader) ([]cloudinary.File, func(), error) {
	files := make([]cloudinary.File, 0, len(headers))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		opened = append(opened, src)
		files = append(files, cloudinary.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      src,
		})
	}
	return files, closeAll, nil
}

func uploadOptions(form *multipart.Form) cloudinary.UploadOptions {
	opts := cloudinary.UploadOptions{
		Folder:         cloudinary.Folder(formValue(form, "folder")),
		ResourceType:   cloudinary.ResourceType(formValue(form, "resource_type")),
		Transformation: formValue(form, "transformation"),
		Quality:        formValue(form, "quality"),
		Format:         cloudinary.Format(formValue(form, "format")),
	}
	if tags := formValue(form, "tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}
	if eager := formValue(form, "eager"); eager != "" {
		// transformations contain commas themselves, so only | separates them
		for _, tr := range strings.Split(eager, "|") {
			if tr = strings.TrimSpace(tr); tr != "" {
				opts.Eager = append(opts.Eager, tr)
			}
		}
	}
	return opts
}

// profileRole picks the role tag for a profile upload. The token's role wins;
// the form may only supply one when the token carries none.
func profileRole(tokenRole, formRole string) (string, error) {
	if tokenRole == "" {
		return formRole, nil
	}
	if formRole != "" && formRole != tokenRole {
		return "", fmt.Errorf("role %q does not match the authenticated role", formRole)
	}
	return tokenRole, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func trimWildcard(p string) string {
	return strings.Trim(p, "/")
}
