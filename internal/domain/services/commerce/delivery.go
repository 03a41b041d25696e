package commerce

import (
	"context"

	"marketplace/internal/domain/models/catalog"
)

// DeliveryService hands out download locations for entitled assets
type DeliveryService interface {
	// ResolveAsset returns delivery URLs for one asset
	ResolveAsset(ctx context.Context, userID, assetID string) (*Delivery, error)

	// ResolveFolder returns delivery URLs for every leaf below an entitled folder
	ResolveFolder(ctx context.Context, userID, folderID string) (*FolderDelivery, error)
}

// Delivery holds the URLs of one asset
type Delivery struct {
	AssetID       string                `json:"asset_id"`
	MediaCategory catalog.MediaCategory `json:"media_category"`
	Title         string                `json:"title"`
	PreviewURL    string                `json:"preview_url,omitempty"`
	DownloadURL   string                `json:"download_url"`
	QRPayload     string                `json:"qr_payload,omitempty"`
}

// FolderDelivery is a bulk download listing
type FolderDelivery struct {
	FolderID string     `json:"folder_id"`
	Name     string     `json:"name"`
	Assets   []Delivery `json:"assets"`
}
