package compose

import "image"

// contentBounds returns the tight bounding box of non-transparent pixels.
// The second return is false when the image is fully transparent.
func contentBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride : (y-b.Min.Y)*img.Stride+(b.Max.X-b.Min.X)*4]
		for x := 0; x < len(row); x += 4 {
			if row[x+3] == 0 {
				continue
			}
			px := b.Min.X + x/4
			if px < minX {
				minX = px
			}
			if px >= maxX {
				maxX = px + 1
			}
			if y < minY {
				minY = y
			}
			if y >= maxY {
				maxY = y + 1
			}
		}
	}

	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}
