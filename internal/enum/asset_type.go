package enum

type AssetType string

const (
	AssetTypeLogo     AssetType = "logo"
	AssetTypeBanner   AssetType = "banner"
	AssetTypeFavicon  AssetType = "favicon"
	AssetTypeDocument AssetType = "document"
)

type AssetTypeSpec struct {
	Folder       string
	ContentTypes []string
	MaxSizeBytes int64
}

var assetTypes = map[AssetType]AssetTypeSpec{
	AssetTypeLogo: {
		Folder:       "logos",
		ContentTypes: []string{"image/png", "image/jpeg", "image/svg+xml", "image/webp"},
		MaxSizeBytes: 2 << 20,
	},
	AssetTypeBanner: {
		Folder:       "banners",
		ContentTypes: []string{"image/png", "image/jpeg", "image/webp"},
		MaxSizeBytes: 5 << 20,
	},
	AssetTypeFavicon: {
		Folder:       "favicons",
		ContentTypes: []string{"image/png", "image/x-icon", "image/vnd.microsoft.icon", "image/svg+xml"},
		MaxSizeBytes: 512 << 10,
	},
	AssetTypeDocument: {
		Folder: "documents",
		ContentTypes: []string{
			"application/pdf",
			"text/plain",
			"text/csv",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		},
		MaxSizeBytes: 10 << 20,
	},
}

// LookupAssetType returns the definition of a raw asset type string; ok is false for unknown types.
func LookupAssetType(raw string) (AssetType, AssetTypeSpec, bool) {
	t := AssetType(raw)
	spec, ok := assetTypes[t]
	return t, spec, ok
}

func (t AssetType) String() string {
	return string(t)
}

func (s AssetTypeSpec) Allows(contentType string) bool {
	for _, allowed := range s.ContentTypes {
		if allowed == contentType {
			return true
		}
	}
	return false
}
