package cli

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"property-import-backend/internal/cloudinary"
)

type uploadFlags struct {
	kind      string
	folder    string
	tags      []string
	userID    string
	role      string
	artisanID string
}

func newUploadCmd(rt *runtime) *cobra.Command {
	var f uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to the media host",
		Long: `Upload sends local files to the media host.

Kinds:
  generic       uses --folder and --tags as given
  property      property images
  profile       one face-cropped profile image (--user, --role)
  id-document   one identity document (--user)
  artisan-work  portfolio images (--artisan)

Examples:
  importctl upload --kind property front.jpg kitchen.jpg
  importctl upload --kind id-document --user 42 passport.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]cloudinary.File, 0, len(args))
			for _, path := range args {
				file, err := readFile(path)
				if err != nil {
					return err
				}
				files = append(files, file)
			}

			progress := func(percent int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d%%\n", hintStyle.Render("uploaded"), percent)
			}

			results, err := upload(cmd, rt.app.Media, f, files, progress)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.PublicID, r.SecureURL, fmt.Sprintf("%d", r.Bytes)})
			}
			printTable(cmd.OutOrStdout(), []string{"PUBLIC ID", "URL", "BYTES"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.kind, "kind", "generic", "generic, property, profile, id-document or artisan-work")
	cmd.Flags().StringVar(&f.folder, "folder", "", "destination folder for generic uploads")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "tags for generic uploads")
	cmd.Flags().StringVar(&f.userID, "user", "", "user id for profile and id-document uploads")
	cmd.Flags().StringVar(&f.role, "role", "", "role tag for profile uploads")
	cmd.Flags().StringVar(&f.artisanID, "artisan", "", "artisan id for artisan-work uploads")
	return cmd
}

func upload(cmd *cobra.Command, media *cloudinary.Client, f uploadFlags, files []cloudinary.File, progress func(int)) ([]cloudinary.UploadResult, error) {
	ctx := cmd.Context()

	single := func(res *cloudinary.UploadResult, err error) ([]cloudinary.UploadResult, error) {
		if err != nil {
			return nil, err
		}
		return []cloudinary.UploadResult{*res}, nil
	}

	switch f.kind {
	case "generic":
		opts := cloudinary.UploadOptions{Folder: cloudinary.Folder(f.folder), Tags: f.tags}
		return media.UploadMultipleFiles(ctx, files, opts, nil, progress)
	case "property":
		return media.UploadPropertyImages(ctx, files, progress)
	case "artisan-work":
		if f.artisanID == "" {
			return nil, fmt.Errorf("--artisan is required for artisan-work uploads")
		}
		return media.UploadArtisanWork(ctx, files, f.artisanID, progress)
	case "profile", "id-document":
		if len(files) != 1 {
			return nil, fmt.Errorf("%s uploads take exactly one file", f.kind)
		}
		if f.userID == "" {
			return nil, fmt.Errorf("--user is required for %s uploads", f.kind)
		}
		if f.kind == "profile" {
			return single(media.UploadProfileImage(ctx, files[0], f.userID, f.role, nil))
		}
		return single(media.UploadIDDocument(ctx, files[0], f.userID, nil))
	default:
		return nil, fmt.Errorf("unknown kind %q", f.kind)
	}
}

func readFile(path string) (cloudinary.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cloudinary.File{}, fmt.Errorf("read %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return cloudinary.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}, nil
}
