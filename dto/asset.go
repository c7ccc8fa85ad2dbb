package dto

type UploadAssetRequest struct {
	AssetType string
	FileName  string
	Data      []byte
}
