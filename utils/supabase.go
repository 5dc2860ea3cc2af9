package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

const campingImageBucket = "camping-images"

// UploadCampingImage pushes an uploaded photo into the Supabase storage
// bucket and returns its public URL for main_image / images fields.
func UploadCampingImage(supabaseURL, supabaseKey string, fh *multipart.FileHeader, objectID string) (string, error) {
	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	objectPath := fmt.Sprintf("%s%s", objectID, filepath.Ext(fh.Filename))

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := storageClient.UploadFile(campingImageBucket, objectPath, f, options); err != nil {
		return "", err
	}

	publicURL := storageClient.GetPublicUrl(campingImageBucket, objectPath)
	return publicURL.SignedURL, nil
}
