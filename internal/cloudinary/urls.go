package cloudinary

import "fmt"

const (
	thumbnailTransform = "w_150,h_150,c_fill,q_auto,f_auto"
	smallTransform     = "w_300,h_200,c_fill,q_auto,f_auto"
	mediumTransform    = "w_600,h_400,c_fill,q_auto,f_auto"
	largeTransform     = "w_1200,h_800,c_fill,q_auto,f_auto"
	optimizedTransform = "q_auto,f_auto"
)

func (c *Client) deliveryURL(resourceType ResourceType, transform, publicID string) string {
	if transform == "" {
		return fmt.Sprintf("%s/%s/%s/upload/%s", c.deliveryBaseURL, c.cloudName, resourceType, publicID)
	}
	return fmt.Sprintf("%s/%s/%s/upload/%s/%s", c.deliveryBaseURL, c.cloudName, resourceType, transform, publicID)
}

// GetOptimizedImageURL returns a delivery URL with automatic quality and format.
func (c *Client) GetOptimizedImageURL(publicID string) string {
	return c.deliveryURL(ResourceImage, optimizedTransform, publicID)
}

func (c *Client) GetDocumentURL(publicID string) string {
	return c.deliveryURL(ResourceRaw, "", publicID)
}

// GetImageSizes builds the standard derived URLs. Nothing is fetched.
func (c *Client) GetImageSizes(publicID string) ImageSizes {
	return ImageSizes{
		Thumbnail: c.deliveryURL(ResourceImage, thumbnailTransform, publicID),
		Small:     c.deliveryURL(ResourceImage, smallTransform, publicID),
		Medium:    c.deliveryURL(ResourceImage, mediumTransform, publicID),
		Large:     c.deliveryURL(ResourceImage, largeTransform, publicID),
		Original:  c.deliveryURL(ResourceImage, "", publicID),
	}
}
