package cloudinary

import "context"

func (c *Client) UploadPropertyImages(ctx context.Context, files []File, onOverallProgress func(int)) ([]UploadResult, error) {
	opts := UploadOptions{
		Folder:       FolderProperties,
		ResourceType: ResourceImage,
		Tags:         []string{"property"},
		Quality:      "auto",
		Format:       FormatAuto,
	}
	return c.UploadMultipleFiles(ctx, files, opts, nil, onOverallProgress)
}

// UploadProfileImage tags the upload with the owner's user id and role.
func (c *Client) UploadProfileImage(ctx context.Context, file File, userID, role string, onProgress func(Progress)) (*UploadResult, error) {
	opts := UploadOptions{
		Folder:         FolderProfiles,
		ResourceType:   ResourceImage,
		Transformation: "c_fill,g_face,w_400,h_400",
		Tags:           []string{"profile", userID, role},
		Quality:        "auto",
		Format:         FormatAuto,
		OnProgress:     onProgress,
	}
	return c.UploadFile(ctx, file, opts)
}

// UploadIDDocument stores PDFs as raw assets and everything else as images.
func (c *Client) UploadIDDocument(ctx context.Context, file File, userID string, onProgress func(Progress)) (*UploadResult, error) {
	rt := ResourceImage
	if file.IsPDF() {
		rt = ResourceRaw
	}
	opts := UploadOptions{
		Folder:       FolderDocuments,
		ResourceType: rt,
		Tags:         []string{"id-document", userID},
		OnProgress:   onProgress,
	}
	return c.UploadFile(ctx, file, opts)
}

func (c *Client) UploadArtisanWork(ctx context.Context, files []File, artisanID string, onOverallProgress func(int)) ([]UploadResult, error) {
	opts := UploadOptions{
		Folder:       FolderArtisans,
		ResourceType: ResourceImage,
		Tags:         []string{"artisan-work", artisanID},
		Quality:      "auto",
		Format:       FormatAuto,
	}
	return c.UploadMultipleFiles(ctx, files, opts, nil, onOverallProgress)
}
