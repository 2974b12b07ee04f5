package cloudinary

import (
	"context"
	"fmt"
)

// UploadMultipleFiles uploads files one at a time in input order. The first
// failure aborts the batch and no results are returned. onFileProgress and
// onOverallProgress may be nil.
func (c *Client) UploadMultipleFiles(
	ctx context.Context,
	files []File,
	opts UploadOptions,
	onFileProgress func(index int, p Progress),
	onOverallProgress func(percent int),
) ([]UploadResult, error) {
	results := make([]UploadResult, 0, len(files))
	total := len(files)

	for i, file := range files {
		fileOpts := opts
		if onFileProgress != nil {
			index := i
			fileOpts.OnProgress = func(p Progress) {
				onFileProgress(index, p)
			}
		}

		result, err := c.UploadFile(ctx, file, fileOpts)
		if err != nil {
			return nil, fmt.Errorf("file %d (%s): %w", i, file.Name, err)
		}
		results = append(results, *result)

		if onOverallProgress != nil {
			onOverallProgress((i + 1) * 100 / total)
		}
	}

	return results, nil
}
