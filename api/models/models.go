// Package models has the request parameter and response types of the artcache REST API.
package models

// GetDataParams defines parameters for GetData.
type GetDataParams struct {
	Refresh *bool `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// GetImageParams defines parameters for GetImage.
type GetImageParams struct {
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

// GetImageUrlParams defines parameters for GetImageUrl.
type GetImageUrlParams struct {
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

// ImageUrl defines model for ImageUrl.
type ImageUrl struct {
	Url string `json:"url"`
}
